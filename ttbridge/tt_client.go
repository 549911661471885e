package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"sync/atomic"
	"time"
)

const (
	ttDefaultBaseURL  = "https://api.na.teamtailor.com/v1"
	ttAPIVersion      = "20240904"
	ttContentType     = "application/vnd.api+json"
	ttRateLimitDelay  = 200 * time.Millisecond
	ttRetryAttempts   = 3
	ttDefaultPageSize = 30
)

type TTClient struct {
	baseURL    string
	token      string
	apiVersion string
	http       *http.Client
	delay      time.Duration

	rateLimitHits int64
}

var ttClient *TTClient

func newTTClient(token string) *TTClient {
	baseURL := os.Getenv("TT_BASE_URL")
	if baseURL == "" {
		baseURL = ttDefaultBaseURL
	}

	apiVersion := os.Getenv("TT_API_VERSION")
	if apiVersion == "" {
		apiVersion = ttAPIVersion
	}

	return &TTClient{
		baseURL:    baseURL,
		token:      token,
		apiVersion: apiVersion,
		http:       &http.Client{Timeout: 30 * time.Second},
		delay:      ttRateLimitDelay,
	}
}

type ttResponse struct {
	StatusCode int
	Body       []byte
}

func (t *TTClient) do(method, path string, params url.Values, jsonBody []byte) (ttResponse, error) {
	urlStr := path
	if !isAbsoluteURL(path) {
		urlStr = t.baseURL + path
		if len(params) > 0 {
			urlStr = urlStr + "?" + params.Encode()
		}
	}

	var lastErr error
	for attempt := 1; attempt <= ttRetryAttempts; attempt++ {
		time.Sleep(t.delay)

		var bodyReader *bytes.Reader
		if jsonBody != nil {
			bodyReader = bytes.NewReader(jsonBody)
		} else {
			bodyReader = bytes.NewReader(nil)
		}

		req, err := http.NewRequest(method, urlStr, bodyReader)
		if err != nil {
			ErrorLog.Println("tt NewRequest err: ", err)
			return ttResponse{}, err
		}
		req.Header.Set("Authorization", "Token token="+t.token)
		req.Header.Set("X-Api-Version", t.apiVersion)
		req.Header.Set("Content-Type", ttContentType)
		req.Header.Set("Accept", ttContentType)

		resp, err := t.http.Do(req)
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
			atomic.AddInt64(&t.rateLimitHits, 1)
			InfoLog.Println("tt rate limited, backing off: ", path)
			lastErr = errors.New("teamtailor rate limit exceeded")
			time.Sleep(2 * time.Second)
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("teamtailor server error %d: %s", resp.StatusCode, string(body))
			time.Sleep(time.Duration(attempt) * time.Second)
			continue
		}

		return ttResponse{StatusCode: resp.StatusCode, Body: body}, nil
	}

	return ttResponse{}, lastErr
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != ""
}

func (t *TTClient) get(path string, params url.Values) (ttResponse, error) {
	return t.do("GET", path, params, nil)
}

func (t *TTClient) post(path string, payload interface{}) (ttResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return ttResponse{}, err
	}
	return t.do("POST", path, nil, body)
}

func (t *TTClient) patch(path string, payload interface{}) (ttResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return ttResponse{}, err
	}
	return t.do("PATCH", path, nil, body)
}

func (t *TTClient) delete(path string) (ttResponse, error) {
	return t.do("DELETE", path, nil, nil)
}

func (t *TTClient) getList(path string, params url.Values) (TTListDocument, error) {
	doc := TTListDocument{}

	resp, err := t.get(path, params)
	if err != nil {
		return doc, err
	}
	if resp.StatusCode >= 400 {
		return doc, fmt.Errorf("teamtailor GET %s failed %d: %s", path, resp.StatusCode, string(resp.Body))
	}

	err = json.Unmarshal(resp.Body, &doc)
	return doc, err
}

// getAllPages follows links.next until the cursor runs out.
func (t *TTClient) getAllPages(path string, params url.Values) ([]TTResource, error) {
	all := []TTResource{}

	doc, err := t.getList(path, params)
	if err != nil {
		return nil, err
	}
	all = append(all, doc.Data...)

	for doc.Links.Next != "" {
		doc, err = t.getList(doc.Links.Next, nil)
		if err != nil {
			return nil, err
		}
		all = append(all, doc.Data...)
	}

	return all, nil
}

// recordCount asks for a one-item page and reads the total from meta.
func (t *TTClient) recordCount(path string) (int, error) {
	params := url.Values{}
	params.Set("page[size]", "1")

	doc, err := t.getList(path, params)
	if err != nil {
		return 0, err
	}

	return doc.Meta.RecordCount, nil
}

func (t *TTClient) ping() error {
	_, err := t.recordCount("/users")
	return err
}

func decodeTTErrors(body []byte) string {
	doc := TTListDocument{}
	if err := json.Unmarshal(body, &doc); err != nil || len(doc.Errors) == 0 {
		return string(body)
	}

	msg := ""
	for i, e := range doc.Errors {
		if i > 0 {
			msg = msg + "; "
		}
		msg = msg + e.Title
		if e.Detail != "" {
			msg = msg + ": " + e.Detail
		}
	}
	return msg
}
