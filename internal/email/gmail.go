package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"newsletter-rag/internal/parser"
)

// DefaultNewsletterQuery matches the common newsletter senders and subjects.
const DefaultNewsletterQuery = "from:substack.com OR from:newsletter OR from:noreply " +
	"OR subject:newsletter OR from:medium.com OR from:substackcdn.com"

// GmailConfig holds Gmail API configuration.
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	AccessToken  string
	TokenFile    string
	UserEmail    string

	MaxResults     int64
	RateLimitDelay time.Duration
}

// GmailClient implements Client against the Gmail API.
type GmailClient struct {
	service *gmail.Service
	userID  string
	config  *GmailConfig
	logger  *slog.Logger
}

// NewGmailClient creates a Gmail API client and verifies the connection.
// An authentication failure here is fatal to startup.
func NewGmailClient(ctx context.Context, config *GmailConfig, logger *slog.Logger) (*GmailClient, error) {
	oauthConfig := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Scopes:       []string{gmail.GmailModifyScope},
		Endpoint:     google.Endpoint,
	}

	token := &oauth2.Token{
		AccessToken:  config.AccessToken,
		RefreshToken: config.RefreshToken,
		TokenType:    "Bearer",
	}

	httpClient := oauthConfig.Client(ctx, token)

	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	userID := "me"
	if config.UserEmail != "" {
		userID = config.UserEmail
	}

	client := &GmailClient{
		service: service,
		userID:  userID,
		config:  config,
		logger:  logger,
	}

	if err := client.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("Gmail client health check failed: %w", err)
	}

	return client, nil
}

// ListMessageIDs runs a Gmail search query and returns matching message IDs.
func (g *GmailClient) ListMessageIDs(ctx context.Context, query string, maxResults int64) ([]string, error) {
	g.logger.Info("Searching Gmail", "query", query, "max_results", maxResults)

	req := g.service.Users.Messages.List(g.userID).Q(query).Context(ctx)
	if maxResults > 0 {
		req = req.MaxResults(maxResults)
	}

	resp, err := req.Do()
	if err != nil {
		return nil, fmt.Errorf("Gmail search failed: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Id)
	}

	g.logger.Info("Found messages", "count", len(ids))
	return ids, nil
}

// GetMessage retrieves one message in full format and parses it.
func (g *GmailClient) GetMessage(ctx context.Context, id string) (*parser.NewsletterEmail, error) {
	time.Sleep(g.config.RateLimitDelay)

	msg, err := g.service.Users.Messages.Get(g.userID, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	return parser.ParseMessage(msg), nil
}

// GetRawMessage retrieves one message in raw format and parses the RFC 822
// payload.
func (g *GmailClient) GetRawMessage(ctx context.Context, id string) (*parser.NewsletterEmail, error) {
	time.Sleep(g.config.RateLimitDelay)

	msg, err := g.service.Users.Messages.Get(g.userID, id).Format("raw").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	return parser.ParseRawMessage(msg), nil
}

// MarkAsRead removes the UNREAD label from the given messages. Failures are
// logged per message; the first error is returned after all IDs are tried.
func (g *GmailClient) MarkAsRead(ctx context.Context, ids []string) error {
	var firstErr error

	for _, id := range ids {
		req := &gmail.ModifyMessageRequest{RemoveLabelIds: []string{"UNREAD"}}
		if _, err := g.service.Users.Messages.Modify(g.userID, id, req).Context(ctx).Do(); err != nil {
			g.logger.Error("Failed to mark message as read", "message_id", id, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to mark message %s as read: %w", id, err)
			}
		}
	}

	return firstErr
}

// HealthCheck verifies the Gmail connection is working.
func (g *GmailClient) HealthCheck(ctx context.Context) error {
	profile, err := g.service.Users.GetProfile(g.userID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get Gmail profile: %w", err)
	}

	g.logger.Info("Connected to Gmail account", "email", profile.EmailAddress)
	return nil
}

// Close cleans up resources.
func (g *GmailClient) Close() error {
	// Gmail API client doesn't require explicit cleanup.
	return nil
}

// BuildSearchQuery constructs a Gmail search query from components. A custom
// query wins outright; otherwise the default newsletter sender/subject filter
// is combined with recency and unread filters.
func BuildSearchQuery(newerThanDays int, unreadOnly bool, customQuery string) string {
	if customQuery != "" {
		return customQuery
	}

	var parts []string

	if unreadOnly {
		parts = append(parts, "is:unread AND ("+DefaultNewsletterQuery+")")
	} else {
		parts = append(parts, DefaultNewsletterQuery)
	}

	if newerThanDays > 0 {
		parts = append(parts, fmt.Sprintf("newer_than:%dd", newerThanDays))
	}

	return strings.Join(parts, " ")
}
