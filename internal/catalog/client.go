// internal/catalog/client.go
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/markerlane/markerlane/pkg/core"
)

// DefaultTimeout applies when New is given a zero timeout.
const DefaultTimeout = 30 * time.Second

// Tag parents are fetched four levels deep, which covers the group chains
// used for lane grouping.
const sceneMarkersQuery = `query FindSceneMarkers($id: ID!) {
  findScene(id: $id) {
    id
    scene_markers {
      id
      title
      seconds
      end_seconds
      primary_tag { ...TagChain }
      tags { id name }
    }
  }
}

fragment TagChain on Tag {
  id
  name
  parents {
    id
    name
    parents {
      id
      name
      parents {
        id
        name
        parents { id name }
      }
    }
  }
}`

const versionQuery = `query { version { version } }`

// Client talks to the media catalog's GraphQL endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new catalog client.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type tagJSON struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Parents []tagJSON `json:"parents"`
}

type sceneMarkerJSON struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Seconds    float64   `json:"seconds"`
	EndSeconds *float64  `json:"end_seconds"`
	PrimaryTag tagJSON   `json:"primary_tag"`
	Tags       []tagJSON `json:"tags"`
}

type findSceneData struct {
	FindScene *struct {
		ID           string            `json:"id"`
		SceneMarkers []sceneMarkerJSON `json:"scene_markers"`
	} `json:"findScene"`
}

// Healthcheck checks that the catalog answers GraphQL queries.
func (c *Client) Healthcheck(ctx context.Context) error {
	if err := c.query(ctx, versionQuery, nil, nil); err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	return nil
}

// FetchSceneMarkers returns every marker of a scene, each carrying sceneID.
func (c *Client) FetchSceneMarkers(ctx context.Context, sceneID string) ([]core.Marker, error) {
	var data findSceneData
	if err := c.query(ctx, sceneMarkersQuery, map[string]any{"id": sceneID}, &data); err != nil {
		return nil, fmt.Errorf("fetching markers for scene %s: %w", sceneID, err)
	}
	if data.FindScene == nil {
		return nil, fmt.Errorf("scene %s not found", sceneID)
	}

	out := make([]core.Marker, 0, len(data.FindScene.SceneMarkers))
	for _, sm := range data.FindScene.SceneMarkers {
		m := core.Marker{
			ID:           sm.ID,
			SceneID:      sceneID,
			Title:        sm.Title,
			StartSeconds: sm.Seconds,
			EndSeconds:   sm.EndSeconds,
			PrimaryTag:   sm.PrimaryTag.toCore(),
		}
		for _, t := range sm.Tags {
			m.Tags = append(m.Tags, t.toCore())
		}
		out = append(out, m)
	}
	return out, nil
}

func (t tagJSON) toCore() core.Tag {
	tag := core.Tag{ID: t.ID, Name: t.Name}
	for _, p := range t.Parents {
		tag.Parents = append(tag.Parents, p.toCore())
	}
	return tag
}

// query posts a GraphQL request and decodes its data into out when non-nil.
func (c *Client) query(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("ApiKey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("catalog returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var gr graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(gr.Errors) > 0 {
		msgs := make([]string, len(gr.Errors))
		for i, e := range gr.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("graphql: %s", strings.Join(msgs, "; "))
	}
	if out != nil && len(gr.Data) > 0 {
		if err := json.Unmarshal(gr.Data, out); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}
	return nil
}
