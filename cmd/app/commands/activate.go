package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/activation/internal/config"
	"github.com/allisson/activation/internal/flow"
)

// NewFlowClient builds the flow client for a server base URL. Every call the
// client makes runs under cfg.ClientRequestTimeout.
func NewFlowClient(cfg *config.Config, serverURL string) *flow.Client {
	return flow.NewClient(serverURL, flow.WithRequestTimeout(cfg.ClientRequestTimeout))
}

// cliNavigator prints the post-flow destination instead of routing a browser.
type cliNavigator struct {
	writer io.Writer
}

func (n *cliNavigator) ToProfileCompletion(user flow.User, message string) {
	_, _ = fmt.Fprintln(n.writer, message)
	_, _ = fmt.Fprintf(n.writer, "Signed in as %s. Continue at /profile/complete/.\n", user.Username)
}

func (n *cliNavigator) ToManualLogin(username, message string) {
	_, _ = fmt.Fprintln(n.writer, message)
	_, _ = fmt.Fprintf(n.writer, "Sign in at /login/ as %s.\n", username)
}

// cliNotifier logs transient notifications; the display duration only matters
// on a screen.
type cliNotifier struct {
	logger *slog.Logger
}

func (n *cliNotifier) Notify(message string, duration time.Duration) {
	n.logger.Info("notice",
		slog.String("message", message),
		slog.Duration("duration", duration),
	)
}

// RunActivate drives one password-creation journey against a running server:
// validates the activation link, checks the password against the policy, and
// runs the create-then-login sequence. The activation link carries the account
// ID and the plain secret printed by create-invitation.
func RunActivate(
	ctx context.Context,
	client *flow.Client,
	logger *slog.Logger,
	writer io.Writer,
	accountIDStr string,
	secret string,
	password string,
) error {
	if _, err := uuid.Parse(accountIDStr); err != nil {
		return fmt.Errorf("invalid account id: %w", err)
	}

	logger.Info("starting activation", slog.String("account_id", accountIDStr))

	f := flow.NewFlow(client, accountIDStr, secret, &cliNavigator{writer: writer}, &cliNotifier{logger: logger})

	result := f.Resolve(ctx)
	if f.State() == flow.StateBlocked {
		return fmt.Errorf("activation link rejected: %s", result.Message)
	}

	_, _ = fmt.Fprintf(writer, "Activation link verified for %s.\n", result.User.Username)

	f.SetCandidate(password)
	if eval := f.Evaluation(); !eval.AllPass {
		return fmt.Errorf("password rejected: needs %s", failedRuleSummary(eval))
	}

	if err := f.Submit(ctx); err != nil {
		if errors.Is(err, flow.ErrCreationFailed) {
			return fmt.Errorf("password creation rejected: %s", f.FailureMessage())
		}
		return err
	}

	return nil
}

// failedRuleSummary lists the failing policy rules in display order.
func failedRuleSummary(eval flow.Evaluation) string {
	labels := map[flow.RuleID]string{
		flow.RuleLength:    fmt.Sprintf("at least %d characters", flow.MinPasswordLength),
		flow.RuleUppercase: "an uppercase letter",
		flow.RuleLowercase: "a lowercase letter",
		flow.RuleNumber:    "a number",
	}

	var failed []string
	for _, id := range flow.RuleIDs {
		if eval.Rules[id] == flow.RuleFail {
			failed = append(failed, labels[id])
		}
	}

	return strings.Join(failed, ", ")
}
