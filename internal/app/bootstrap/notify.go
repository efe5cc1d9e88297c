package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/llc-formation-platform/internal/config"
	"github.com/wolfman30/llc-formation-platform/internal/notify"
	"github.com/wolfman30/llc-formation-platform/pkg/logging"
)

// Email providers accepted in EMAIL_PROVIDER.
const (
	EmailProviderAuto     = "auto"
	EmailProviderSendGrid = "sendgrid"
	EmailProviderSES      = "ses"
	EmailProviderStub     = "stub"
)

// NeedsSESClient reports whether BuildEmailSender may use an SES client, so
// callers only load AWS configuration when it can matter.
func NeedsSESClient(cfg *appconfig.Config) bool {
	if cfg == nil || strings.TrimSpace(cfg.EmailFromAddress) == "" {
		return false
	}
	switch cfg.EmailProvider {
	case EmailProviderSES:
		return true
	case EmailProviderAuto, "":
		return strings.TrimSpace(cfg.SendGridAPIKey) == ""
	}
	return false
}

// BuildEmailSender selects the operator e-mail provider. It always returns
// a usable sender: the stub is used when nothing is configured, and reason
// explains why.
func BuildEmailSender(cfg *appconfig.Config, sesClient *sesv2.Client, logger *logging.Logger) (notify.EmailSender, string, string) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return notify.NewStubEmailSender(logger), EmailProviderStub, "missing config"
	}
	from := strings.TrimSpace(cfg.EmailFromAddress)

	useSendGrid := func() (notify.EmailSender, string, string) {
		if strings.TrimSpace(cfg.SendGridAPIKey) == "" || from == "" {
			return nil, EmailProviderSendGrid, "SENDGRID_API_KEY and EMAIL_FROM_ADDRESS are required"
		}
		return notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: from,
			FromName:  cfg.EmailFromName,
		}, logger), EmailProviderSendGrid, ""
	}
	useSES := func() (notify.EmailSender, string, string) {
		if sesClient == nil || from == "" {
			return nil, EmailProviderSES, "SES client and EMAIL_FROM_ADDRESS are required"
		}
		return notify.NewSESSender(sesClient, notify.SESConfig{
			FromEmail: from,
			FromName:  cfg.EmailFromName,
		}, logger), EmailProviderSES, ""
	}

	var (
		sender   notify.EmailSender
		provider string
		reason   string
	)
	switch cfg.EmailProvider {
	case EmailProviderSendGrid:
		sender, provider, reason = useSendGrid()
	case EmailProviderSES:
		sender, provider, reason = useSES()
	case EmailProviderStub:
		reason = "stub provider requested"
	default:
		sender, provider, reason = useSendGrid()
		if sender == nil {
			sender, provider, reason = useSES()
		}
		if sender == nil {
			reason = "no e-mail provider configured"
		}
	}
	if sender == nil {
		return notify.NewStubEmailSender(logger), EmailProviderStub, reason
	}
	return sender, provider, reason
}

// NotifyRecipients splits NOTIFY_EMAIL_TO into addresses.
func NotifyRecipients(cfg *appconfig.Config) []string {
	if cfg == nil {
		return nil
	}
	var out []string
	for _, addr := range strings.Split(cfg.NotifyEmailTo, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
