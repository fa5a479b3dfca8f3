// api/database/cosmos.go
package database

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"visitcounter/api/config"
)

const (
	// REST API version of the Cosmos DB SQL (documents) surface.
	cosmosAPIVersion = "2018-12-31"

	// Every store call is bounded; a hung request counts as a failure.
	cosmosRequestTimeout = 10 * time.Second
)

// ErrNotFound is returned when the addressed document does not exist.
// Callers treat it as "count = 0", never as a failure.
var ErrNotFound = errors.New("cosmos: document not found")

// ErrUnauthorized is returned when the service rejects our authorization
// token (bad key, or local clock outside the server's tolerance window).
var ErrUnauthorized = errors.New("cosmos: authorization rejected")

// SigningError marks a failure to produce the authorization token in the
// first place, such as a master key that is not valid base64. Kept distinct
// from transport errors so a misconfigured key is never mistaken for a
// transient network problem.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return "cosmos: request signing failed: " + e.Err.Error()
}

func (e *SigningError) Unwrap() error { return e.Err }

// QueryParameter is one named parameter of a Cosmos SQL query.
type QueryParameter struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// CosmosClient issues document reads, upserts and queries against the
// Cosmos DB REST endpoint directly, signing each request with the account
// master key. No SDK involved.
type CosmosClient struct {
	endpoint  string
	masterKey []byte
	database  string
	container string
	client    *http.Client
	now       func() time.Time // injectable for signing tests
}

func NewCosmosClient(cfg *config.Config) (*CosmosClient, error) {
	key, err := base64.StdEncoding.DecodeString(cfg.CosmosKey)
	if err != nil {
		return nil, &SigningError{Err: fmt.Errorf("decoding master key: %w", err)}
	}

	return &CosmosClient{
		endpoint:  strings.TrimRight(cfg.CosmosEndpoint, "/"),
		masterKey: key,
		database:  cfg.CosmosDatabase,
		container: cfg.CosmosContainer,
		client:    &http.Client{Timeout: cosmosRequestTimeout},
		now:       time.Now,
	}, nil
}

// collectionLink is the resource link of the container, used both for
// addressing and for signing collection-scoped operations (upsert, query).
func (c *CosmosClient) collectionLink() string {
	return fmt.Sprintf("dbs/%s/colls/%s", c.database, c.container)
}

func (c *CosmosClient) documentLink(id string) string {
	return c.collectionLink() + "/docs/" + id
}

// sign builds the master-key authorization token for one request. The
// canonical string concatenates the lower-cased verb, the resource type,
// the resource link of the exact resource being addressed, the lower-cased
// RFC-1123 date and an empty body line, each terminated by a newline. The
// HMAC-SHA256 signature over it is base64-encoded and wrapped into the
// token format the service expects.
func (c *CosmosClient) sign(verb, resourceType, resourceLink, date string) string {
	canonical := strings.ToLower(verb) + "\n" +
		strings.ToLower(resourceType) + "\n" +
		resourceLink + "\n" +
		strings.ToLower(date) + "\n" +
		"\n"

	mac := hmac.New(sha256.New, c.masterKey)
	mac.Write([]byte(canonical))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return url.QueryEscape("type=master&ver=1.0&sig=" + signature)
}

// newRequest builds a signed request. The date is generated here, at
// signing time, because the signature binds to it; retrying callers must
// build a fresh request rather than resend this one.
func (c *CosmosClient) newRequest(ctx context.Context, method, path, resourceLink string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+"/"+path, body)
	if err != nil {
		return nil, err
	}

	date := c.now().UTC().Format(http.TimeFormat)
	req.Header.Set("Authorization", c.sign(method, "docs", resourceLink, date))
	req.Header.Set("x-ms-date", date)
	req.Header.Set("x-ms-version", cosmosAPIVersion)
	return req, nil
}

func partitionKeyHeader(partitionKey string) string {
	// The header carries the partition key as a one-element JSON array.
	encoded, _ := json.Marshal([]string{partitionKey})
	return string(encoded)
}

// ReadDocument fetches the document with the given id from the given
// partition and decodes it into out. Absent documents are ErrNotFound.
func (c *CosmosClient) ReadDocument(ctx context.Context, id, partitionKey string, out any) error {
	link := c.documentLink(id)
	req, err := c.newRequest(ctx, http.MethodGet, link, link, nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-ms-documentdb-partitionkey", partitionKeyHeader(partitionKey))

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("cosmos read %s: %w", id, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, http.StatusOK); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cosmos read %s: decoding document: %w", id, err)
	}
	return nil
}

// UpsertDocument creates or overwrites doc in the given partition.
// Writing the same document twice leaves the same stored state.
func (c *CosmosClient) UpsertDocument(ctx context.Context, partitionKey string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("cosmos upsert: encoding document: %w", err)
	}

	// Upserts are addressed (and signed) at the collection, not the document.
	req, err := c.newRequest(ctx, http.MethodPost, c.collectionLink()+"/docs", c.collectionLink(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-ms-documentdb-is-upsert", "true")
	req.Header.Set("x-ms-documentdb-partitionkey", partitionKeyHeader(partitionKey))

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("cosmos upsert: %w", err)
	}
	defer resp.Body.Close()

	return checkStatus(resp, http.StatusOK, http.StatusCreated)
}

// QueryDocuments runs a SQL query across all partitions of the container
// and decodes the result documents into out, which must be a pointer to a
// slice. The service pages query results; the client follows the
// continuation token until the last page, so out always holds the complete
// result set. Each page request is signed with its own fresh date.
func (c *CosmosClient) QueryDocuments(ctx context.Context, query string, params []QueryParameter, out any) error {
	if params == nil {
		params = []QueryParameter{}
	}
	body, err := json.Marshal(map[string]any{
		"query":      query,
		"parameters": params,
	})
	if err != nil {
		return fmt.Errorf("cosmos query: encoding query: %w", err)
	}

	var documents []json.RawMessage
	continuation := ""
	for {
		req, err := c.newRequest(ctx, http.MethodPost, c.collectionLink()+"/docs", c.collectionLink(), bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/query+json")
		req.Header.Set("x-ms-documentdb-isquery", "true")
		req.Header.Set("x-ms-documentdb-query-enablecrosspartition", "true")
		req.Header.Set("x-ms-max-item-count", "-1")
		if continuation != "" {
			req.Header.Set("x-ms-continuation", continuation)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("cosmos query: %w", err)
		}

		page, token, err := decodeQueryPage(resp)
		if err != nil {
			return err
		}
		documents = append(documents, page...)

		if token == "" {
			break
		}
		continuation = token
	}

	if len(documents) == 0 {
		return nil
	}
	combined, err := json.Marshal(documents)
	if err != nil {
		return fmt.Errorf("cosmos query: encoding result set: %w", err)
	}
	if err := json.Unmarshal(combined, out); err != nil {
		return fmt.Errorf("cosmos query: decoding documents: %w", err)
	}
	return nil
}

// decodeQueryPage consumes one query result page and returns its documents
// plus the continuation token for the next page, empty on the last page.
func decodeQueryPage(resp *http.Response) ([]json.RawMessage, string, error) {
	defer resp.Body.Close()

	if err := checkStatus(resp, http.StatusOK); err != nil {
		return nil, "", err
	}

	var page struct {
		Documents []json.RawMessage `json:"Documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, "", fmt.Errorf("cosmos query: decoding result page: %w", err)
	}
	return page.Documents, resp.Header.Get("x-ms-continuation"), nil
}

func checkStatus(resp *http.Response, accepted ...int) error {
	for _, code := range accepted {
		if resp.StatusCode == code {
			return nil
		}
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w (status %d): %s", ErrUnauthorized, resp.StatusCode, detail)
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("cosmos: unexpected status %d: %s", resp.StatusCode, detail)
}
