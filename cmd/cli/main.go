package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

const usage = `usage: announcer-cli <command>

  visible          list announcements visible to this visitor
  dismiss <id>     dismiss a dismissible announcement
  dismissed        list dismissed ids (needs ADMIN_API_KEY)
  clear            forget all dismissals (needs ADMIN_API_KEY)

env: API_BASE (default http://localhost:8080), VISITOR_ID, ADMIN_API_KEY`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	api := strings.TrimRight(os.Getenv("API_BASE"), "/")
	if api == "" {
		api = "http://localhost:8080"
	}
	c := &client{
		base:    api,
		visitor: strings.TrimSpace(os.Getenv("VISITOR_ID")),
		key:     strings.TrimSpace(os.Getenv("ADMIN_API_KEY")),
	}

	var err error
	switch os.Args[1] {
	case "visible":
		err = c.visible()
	case "dismiss":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "dismiss needs an announcement id")
			os.Exit(2)
		}
		err = c.dismiss(os.Args[2])
	case "dismissed":
		err = c.debug(http.MethodGet)
	case "clear":
		err = c.debug(http.MethodDelete)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type client struct {
	base    string
	visitor string
	key     string
}

func (c *client) do(method, path string) (*http.Response, error) {
	req, err := http.NewRequest(method, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	if c.visitor != "" {
		req.AddCookie(&http.Cookie{Name: "visitor_id", Value: c.visitor})
	}
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contacting API: %w", err)
	}
	if c.visitor == "" {
		for _, ck := range resp.Cookies() {
			if ck.Name == "visitor_id" {
				fmt.Fprintf(os.Stderr, "new visitor %s (set VISITOR_ID to reuse it)\n", ck.Value)
			}
		}
	}
	return resp, nil
}

func (c *client) visible() error {
	resp, err := c.do(http.MethodGet, "/api/announcements")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status: %s", resp.Status)
	}

	var list []struct {
		ID          string `json:"id"`
		Type        string `json:"type"`
		Dismissible bool   `json:"dismissible"`
		Message     string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No announcements.")
		return nil
	}
	for _, a := range list {
		mark := " "
		if a.Dismissible {
			mark = "x"
		}
		fmt.Printf("[%s] %-8s %-20s %s\n", mark, a.Type, a.ID, a.Message)
	}
	return nil
}

func (c *client) dismiss(id string) error {
	resp, err := c.do(http.MethodPost, "/api/announcements/"+url.PathEscape(id)+"/dismiss")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		fmt.Println("Dismissed", id)
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%q is not a visible dismissible announcement", id)
	default:
		return fmt.Errorf("API returned status: %s", resp.Status)
	}
}

func (c *client) debug(method string) error {
	resp, err := c.do(method, "/debug/announcements/dismissed")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status: %s", resp.Status)
	}
	_, err = io.Copy(os.Stdout, resp.Body)
	return err
}
