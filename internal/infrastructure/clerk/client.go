package clerk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/greenmission/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	defaultAPIURL = "https://api.clerk.com/v1"

	// membershipPageSize is the maximum page size Clerk allows.
	membershipPageSize = 100
)

// Config holds Clerk API connection settings
type Config struct {
	// SecretKey is a Clerk secret API key (sk_...)
	SecretKey string
	// APIURL overrides the API endpoint; used in tests
	APIURL string
}

// Validate validates the Clerk configuration
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("clerk: secret key is required")
	}
	return nil
}

// Client is a thin HTTP client for the Clerk Backend API. It covers the user
// and organization reads this service needs.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Clerk API client
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.APIURL == "" {
		config.APIURL = defaultAPIURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// EmailAddress is one of a user's registered email addresses
type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// User is a Clerk user profile
type User struct {
	ID                    string         `json:"id"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	ImageURL              string         `json:"image_url"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PublicMetadata        map[string]any `json:"public_metadata"`
}

// PrimaryEmail returns the user's primary email address, or "" when the user
// has none.
func (u *User) PrimaryEmail() string {
	for _, addr := range u.EmailAddresses {
		if addr.ID == u.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

// Organization is a Clerk organization
type Organization struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Slug           string         `json:"slug"`
	ImageURL       string         `json:"image_url"`
	MembersCount   int            `json:"members_count"`
	PublicMetadata map[string]any `json:"public_metadata"`
}

// PublicUserData is the member profile embedded in a membership
type PublicUserData struct {
	UserID     string `json:"user_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Identifier string `json:"identifier"`
	ImageURL   string `json:"image_url"`
}

// Membership links a user to an organization with a role
type Membership struct {
	ID             string         `json:"id"`
	Role           string         `json:"role"`
	Organization   Organization   `json:"organization"`
	PublicUserData PublicUserData `json:"public_user_data"`
}

type membershipList struct {
	Data       []Membership `json:"data"`
	TotalCount int          `json:"total_count"`
}

// GetUser fetches a user by Clerk user ID.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	var user User
	if err := c.get(ctx, "/users/"+url.PathEscape(userID), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrganization fetches an organization by Clerk organization ID.
func (c *Client) GetOrganization(ctx context.Context, orgID string) (*Organization, error) {
	var org Organization
	if err := c.get(ctx, "/organizations/"+url.PathEscape(orgID), &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// ListOrganizationMemberships lists the memberships of an organization,
// following pagination until the listing is exhausted.
func (c *Client) ListOrganizationMemberships(ctx context.Context, orgID string) ([]Membership, error) {
	return c.listMemberships(ctx, "/organizations/"+url.PathEscape(orgID)+"/memberships")
}

// ListUserMemberships lists the organization memberships of a user.
func (c *Client) ListUserMemberships(ctx context.Context, userID string) ([]Membership, error) {
	return c.listMemberships(ctx, "/users/"+url.PathEscape(userID)+"/organization_memberships")
}

func (c *Client) listMemberships(ctx context.Context, path string) ([]Membership, error) {
	var memberships []Membership
	offset := 0

	for {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(membershipPageSize))
		q.Set("offset", strconv.Itoa(offset))

		var page membershipList
		if err := c.get(ctx, path+"?"+q.Encode(), &page); err != nil {
			return nil, err
		}

		memberships = append(memberships, page.Data...)

		if len(memberships) >= page.TotalCount || len(page.Data) == 0 {
			break
		}
		offset = len(memberships)
	}

	return memberships, nil
}

type apiError struct {
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.APIURL+path, nil)
	if err != nil {
		return fmt.Errorf("clerk: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("clerk: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("clerk: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return shared.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if err := json.Unmarshal(data, &apiErr); err == nil && len(apiErr.Errors) > 0 {
			c.logger.Error("Clerk API error",
				zap.Int("status", resp.StatusCode),
				zap.String("code", apiErr.Errors[0].Code))
			return fmt.Errorf("clerk: %s (status %d)", apiErr.Errors[0].Code, resp.StatusCode)
		}
		return fmt.Errorf("clerk: unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("clerk: failed to decode response: %w", err)
	}
	return nil
}
