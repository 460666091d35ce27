package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	activationUseCase "github.com/allisson/activation/internal/activation/usecase"
)

// RunCreateInvitation issues a new activation invitation for an existing
// account and prints the activation link path. The plain secret only exists in
// this output; the database stores its hash.
//
// Requirements: Database must be migrated and accessible, and the account must
// already exist.
func RunCreateInvitation(
	ctx context.Context,
	useCase activationUseCase.UseCase,
	logger *slog.Logger,
	writer io.Writer,
	accountIDStr string,
	ttl time.Duration,
	format string,
) error {
	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		return fmt.Errorf("invalid account id: %w", err)
	}

	logger.Info("creating invitation",
		slog.String("account_id", accountID.String()),
		slog.Duration("ttl", ttl),
	)

	output, err := useCase.CreateInvitation(ctx, accountID, ttl)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}

	linkPath := fmt.Sprintf("/set-password/%s/%s/", output.Invitation.AccountID, output.PlainSecret)

	if format == "json" {
		outputInvitationJSON(output.Invitation.AccountID, output.PlainSecret, linkPath, output.Invitation.ExpiresAt, writer)
	} else {
		outputInvitationText(output.Invitation.AccountID, output.PlainSecret, linkPath, output.Invitation.ExpiresAt, writer)
	}

	logger.Info("invitation created successfully",
		slog.String("invitation_id", output.Invitation.ID.String()),
		slog.String("account_id", accountID.String()),
	)

	return nil
}

// outputInvitationText writes the invitation details in human-readable format.
func outputInvitationText(accountID uuid.UUID, secret, linkPath string, expiresAt time.Time, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "Invitation created successfully!")
	_, _ = fmt.Fprintf(writer, "Account ID: %s\n", accountID)
	_, _ = fmt.Fprintf(writer, "Secret: %s\n", secret)
	_, _ = fmt.Fprintf(writer, "Activation link path: %s\n", linkPath)
	_, _ = fmt.Fprintf(writer, "Expires at: %s\n", expiresAt.Format(time.RFC3339))
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The secret is shown only once. Share the link over a secure channel.")
}

// outputInvitationJSON writes the invitation details as JSON.
func outputInvitationJSON(accountID uuid.UUID, secret, linkPath string, expiresAt time.Time, writer io.Writer) {
	result := map[string]string{
		"account_id": accountID.String(),
		"secret":     secret,
		"link_path":  linkPath,
		"expires_at": expiresAt.Format(time.RFC3339),
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(result)
}
