package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Greenhouse allows 50 requests per 10 seconds, so calls are spaced 200ms
// apart and 429s back off harder.
const (
	ghDefaultBaseURL = "https://harvest.greenhouse.io/v1"
	ghRateLimitDelay = 200 * time.Millisecond
	ghRetryAttempts  = 3
	ghBatchSize      = 100
)

type GHClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	delay   time.Duration
}

var ghClient *GHClient

func initClients() {
	ghClient = newGHClient(passwords.GREENHOUSE_API_KEY)
	ttClient = newTTClient(passwords.TT_TOKEN)
}

func newGHClient(apiKey string) *GHClient {
	baseURL := os.Getenv("GREENHOUSE_API_URL")
	if baseURL == "" {
		baseURL = ghDefaultBaseURL
	}

	return &GHClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		delay:   ghRateLimitDelay,
	}
}

func (g *GHClient) getRaw(path string, params url.Values) ([]byte, error) {
	urlStr := g.baseURL + "/" + path
	if len(params) > 0 {
		urlStr = urlStr + "?" + params.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= ghRetryAttempts; attempt++ {
		time.Sleep(g.delay)

		req, err := http.NewRequest("GET", urlStr, nil)
		if err != nil {
			ErrorLog.Println("gh NewRequest err: ", err)
			return nil, err
		}
		req.SetBasicAuth(g.apiKey, "")
		req.Header.Set("Accept", "application/json")

		resp, err := g.http.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt) * time.Second)
			continue
		}

		body, err := ioutil.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			InfoLog.Println("gh rate limited, backing off: ", path)
			lastErr = errors.New("greenhouse rate limit exceeded")
			time.Sleep(2 * time.Second)
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("greenhouse server error %d: %s", resp.StatusCode, string(body))
			time.Sleep(time.Duration(attempt) * time.Second)
			continue
		}

		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("greenhouse request failed %d: %s", resp.StatusCode, string(body))
		}

		return body, nil
	}

	return nil, lastErr
}

func (g *GHClient) getJSON(path string, params url.Values, out interface{}) error {
	body, err := g.getRaw(path, params)
	if err != nil {
		return err
	}

	return json.Unmarshal(body, out)
}

// fetchAll drains a page-numbered endpoint. Stops on the first empty page.
func (g *GHClient) fetchAll(path string, extra url.Values) ([]json.RawMessage, error) {
	all := []json.RawMessage{}
	page := 1

	for {
		params := url.Values{}
		for k, vs := range extra {
			for _, v := range vs {
				params.Add(k, v)
			}
		}
		params.Set("per_page", strconv.Itoa(ghBatchSize))
		params.Set("page", strconv.Itoa(page))

		body, err := g.getRaw(path, params)
		if err != nil {
			return nil, err
		}

		pageItems := []json.RawMessage{}
		if err := json.Unmarshal(body, &pageItems); err != nil {
			// non-paginated endpoints return a single object
			single := json.RawMessage{}
			if err2 := json.Unmarshal(body, &single); err2 != nil {
				return nil, err
			}
			return append(all, single), nil
		}

		if len(pageItems) == 0 {
			break
		}

		all = append(all, pageItems...)
		page++
	}

	return all, nil
}

// rawsToJSON joins page items back into one JSON array, the shape snapshots
// are stored in.
func rawsToJSON(raws []json.RawMessage) ([]byte, error) {
	return json.Marshal(raws)
}

func (g *GHClient) ping() error {
	_, err := g.getRaw("users", url.Values{"per_page": []string{"1"}})
	return err
}
