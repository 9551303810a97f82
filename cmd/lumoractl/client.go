package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// doRequest sends one API call with the identity header and streams the
// response body to out.
func doRequest(method, url, userID string, payload interface{}, out io.Writer) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	_, err = io.Copy(out, resp.Body)
	return err
}

func runHealth(apiURL string, out io.Writer) error {
	return doRequest(http.MethodGet, apiURL+"/api/health", "", nil, out)
}

func runJournalList(apiURL, userID string, out io.Writer) error {
	return doRequest(http.MethodGet, apiURL+"/api/journal", userID, nil, out)
}

func runJournalCreate(apiURL, userID, title, content string, out io.Writer) error {
	if title == "" || content == "" {
		return fmt.Errorf("title and content cannot be empty")
	}
	payload := map[string]interface{}{"title": title, "content": content}
	return doRequest(http.MethodPost, apiURL+"/api/journal", userID, payload, out)
}

func runChat(apiURL, userID, sessionID, entryID, message string, out io.Writer) error {
	if message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if sessionID != "" {
		payload := map[string]interface{}{"message": message}
		return doRequest(http.MethodPost, apiURL+"/api/chat/session/"+sessionID, userID, payload, out)
	}
	payload := map[string]interface{}{"message": message}
	if entryID != "" {
		payload["entryId"] = entryID
	}
	return doRequest(http.MethodPost, apiURL+"/api/chat/session", userID, payload, out)
}

func runDeleteUser(apiURL, userID string, out io.Writer) error {
	if err := doRequest(http.MethodDelete, apiURL+"/api/users/"+userID, userID, nil, out); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "user %s deleted\n", userID)
	return err
}
