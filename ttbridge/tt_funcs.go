package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Typed wrappers over the raw TeamTailor client. Paths mirror the API docs.

func (t *TTClient) getCandidates(params url.Values) (TTListDocument, error) {
	return t.getList("/candidates", params)
}

func (t *TTClient) getJobs(params url.Values) (TTListDocument, error) {
	return t.getList("/jobs", params)
}

func (t *TTClient) getUsers(params url.Values) (TTListDocument, error) {
	return t.getList("/users", params)
}

func (t *TTClient) getApplications(params url.Values) (TTListDocument, error) {
	return t.getList("/job-applications", params)
}

func (t *TTClient) getUserRoles() (TTListDocument, error) {
	return t.getList("/users/user_roles", nil)
}

func (t *TTClient) getProspectPools(params url.Values) (TTListDocument, error) {
	return t.getList("/metadata/prospect_pools", params)
}

// createResource POSTs a payload and returns the new id.
func (t *TTClient) createResource(path string, payload TTPayload) (string, ttResponse, error) {
	resp, err := t.post(path, payload)
	if err != nil {
		return "", resp, err
	}

	if resp.StatusCode != 200 && resp.StatusCode != 201 {
		return "", resp, fmt.Errorf("teamtailor POST %s failed %d: %s", path, resp.StatusCode, decodeTTErrors(resp.Body))
	}

	doc := TTSingleDocument{}
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return "", resp, err
	}
	if doc.Data.ID == "" {
		return "", resp, errors.New("teamtailor create response had no id")
	}

	return doc.Data.ID, resp, nil
}

func (t *TTClient) updateResource(path, id string, payload TTPayload) error {
	payload.Data.ID = id

	resp, err := t.patch(path+"/"+id, payload)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 && resp.StatusCode != 204 {
		return fmt.Errorf("teamtailor PATCH %s/%s failed %d: %s", path, id, resp.StatusCode, decodeTTErrors(resp.Body))
	}

	return nil
}

// findByExternalID looks a record up by the external-id the migration stamps
// on everything it creates.
func (t *TTClient) findByExternalID(path, externalID string) (string, error) {
	if externalID == "" {
		return "", nil
	}

	params := url.Values{}
	params.Set("filter[external-id]", externalID)

	doc, err := t.getList(path, params)
	if err != nil {
		return "", err
	}

	if len(doc.Data) == 0 {
		return "", nil
	}
	return doc.Data[0].ID, nil
}

// existingUserEmails returns the lowercased emails already present in
// TeamTailor, cached because the migration and the user tooling both ask.
func (t *TTClient) existingUserEmails() (map[string]string, error) {
	cached, found := cash.Get(CACHENAME_TT_USERS)
	if found {
		byEmail, ok := cached.(map[string]string)
		if ok {
			return byEmail, nil
		}
	}

	users, err := t.getAllPages("/users", nil)
	if err != nil {
		return nil, err
	}

	byEmail := map[string]string{}
	for _, u := range users {
		email := strings.ToLower(u.stringAttr("email"))
		if email != "" {
			byEmail[email] = u.ID
		}
	}

	cash.Set(CACHENAME_TT_USERS, byEmail, DEFAULT_CACHE_EXPIRATION)

	return byEmail, nil
}

func (t *TTClient) addCandidateToPool(candidateID, poolID string) error {
	payload := TTPayload{
		Data: TTResource{
			Type: "prospect_pool_candidates",
			Attributes: map[string]interface{}{
				"candidate-id":     candidateID,
				"prospect-pool-id": poolID,
			},
		},
	}

	_, _, err := t.createResource("/prospect_pool_candidates", payload)
	return err
}
