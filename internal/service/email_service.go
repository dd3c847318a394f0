package service

import (
	"context"
	"fmt"
	"html"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"ontheway/internal/models"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	logger     *zap.Logger
}

// NewEmailService creates a new email service. An empty fromEmail yields a disabled service.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, logger *zap.Logger) (*EmailService, error) {
	if fromEmail == "" {
		logger.Info("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, logger: logger}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("email service enabled", zap.String("from", fromEmail), zap.String("region", awsRegion))
	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		logger:     logger,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendReadingReminder emails a reader the title of today's reading
func (s *EmailService) SendReadingReminder(ctx context.Context, user *models.User, day models.ReadingDay) error {
	if !s.enabled {
		s.logger.Debug("skipping reminder (email disabled)", zap.Int64("user_id", user.ID))
		return nil
	}

	subject, htmlBody, textBody := reminderContent(user.Name, day, s.appBaseURL)
	return s.sendEmail(ctx, user.Email, subject, htmlBody, textBody)
}

func reminderContent(name string, day models.ReadingDay, appBaseURL string) (subject, htmlBody, textBody string) {
	subject = "Leitura de hoje: " + day.Title

	htmlBody = fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #1e3a5f; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #1e3a5f; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>On The Way</h1>
		</div>
		<div class="content">
			<p>Olá %s,</p>
			<p>A leitura de hoje é <strong>%s</strong>.</p>
			<p style="text-align: center;">
				<a href="%s/" class="button">Marcar como lida</a>
			</p>
			<p>Leituras feitas no próprio dia valem 2 pontos.</p>
		</div>
		<div class="footer">
			<p>Você recebe este lembrete porque ativou as notificações. Desative-as no seu perfil.</p>
		</div>
	</div>
</body>
</html>
`, html.EscapeString(name), html.EscapeString(day.Title), appBaseURL)

	textBody = fmt.Sprintf(`Olá %s,

A leitura de hoje é %s.

Marque como lida em %s/
Leituras feitas no próprio dia valem 2 pontos.

---
Você recebe este lembrete porque ativou as notificações. Desative-as no seu perfil.
`, name, day.Title, appBaseURL)

	return subject, htmlBody, textBody
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	s.logger.Info("email sent", zap.String("subject", subject), zap.String("message_id", aws.ToString(result.MessageId)))
	return nil
}
