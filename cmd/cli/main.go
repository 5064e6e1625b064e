// Command notehub is a CLI client for the NoteHub API.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "notehub")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "notehub")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.Create(tokenPath())
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Chmod(0o600); err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", errors.New("no valid token (login required)")
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.AccessToken, nil
}

// ---- http client ----

type api struct {
	base   string
	bearer string
	hc     *http.Client
}

func newAPI(base, bearer string) *api {
	return &api{base: strings.TrimRight(base, "/"), bearer: bearer, hc: &http.Client{Timeout: 30 * time.Second}}
}

type apiError struct {
	Error string `json:"error"`
}

// do sends a JSON request and decodes a JSON response. A nil in writes no
// body; a nil out discards the response body.
func (a *api) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+a.bearer)
	}
	resp, err := a.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var ae apiError
		if json.NewDecoder(resp.Body).Decode(&ae) == nil && ae.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, ae.Error)
		}
		return errors.New(resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// login posts form fields, not JSON.
func (a *api) login(ctx context.Context, username, password string) (tokenOut, error) {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+"/auth/login",
		strings.NewReader(form.Encode()))
	if err != nil {
		return tokenOut{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := a.hc.Do(req)
	if err != nil {
		return tokenOut{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var ae apiError
		if json.NewDecoder(resp.Body).Decode(&ae) == nil && ae.Error != "" {
			return tokenOut{}, fmt.Errorf("%s: %s", resp.Status, ae.Error)
		}
		return tokenOut{}, errors.New(resp.Status)
	}
	var tok tokenOut
	err = json.NewDecoder(resp.Body).Decode(&tok)
	return tok, err
}

// ---- wire types ----

type userOut struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type tokenOut struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type planOut struct {
	ID        int64     `json:"id"`
	NoteID    int64     `json:"note_id"`
	Title     string    `json:"title"`
	IsDone    bool      `json:"is_done"`
	CreatedAt time.Time `json:"created_at"`
}

type noteOut struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Title     string    `json:"title"`
	Content   *string   `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Plans     []planOut `json:"plans,omitempty"`
}

// ---- utils ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func mustAuth(base string) *api {
	tok, err := loadToken()
	if err != nil {
		fail(err)
	}
	return newAPI(base, tok)
}

// setFlags reports which flags were given on the command line, so that an
// omitted flag stays an omitted field in a patch request.
func setFlags(fs *flag.FlagSet) map[string]bool {
	seen := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	return seen
}

func usage() {
	fmt.Fprintf(os.Stderr, `notehub CLI
Usage:
  notehub -addr URL <cmd> [args]

Commands:
  version
  register   -u <username> -p <password>
  login      -u <username> -p <password>        (saves token)
  logout                                        (drops saved token)
  whoami
  list                                          (list notes)
  get        -id <note>                         (note with plans)
  add        -title <t> [-content <c>]
  edit       -id <note> [-title <t>] [-content <c>]
  rm         -id <note>                         (cascades to plans)
  plans      -note <note>
  plan-add   -note <note> -title <t> [-done]
  plan-edit  -note <note> -id <plan> [-title <t>] [-done=<bool>]
  plan-rm    -note <note> -id <plan>
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands against the NoteHub HTTP API.
func main() {
	addr := flag.String("addr", "http://localhost:8000", "server base URL")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	rest := flag.Args()[1:]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {

	case "version":
		fmt.Printf("notehub %s (%s)\n", version, buildDate)

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		_ = fs.Parse(rest)
		if *u == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -u and -p")
			os.Exit(1)
		}
		var out userOut
		body := map[string]string{"username": *u, "password": *p}
		if err := newAPI(*addr, "").do(ctx, http.MethodPost, "/auth/register", body, &out); err != nil {
			fail(err)
		}
		printJSON(out)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		_ = fs.Parse(rest)
		if *u == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -u and -p")
			os.Exit(1)
		}
		tok, err := newAPI(*addr, "").login(ctx, *u, *p)
		if err != nil {
			fail(err)
		}
		exp := tokenExpiry(tok.AccessToken)
		if err := saveToken(tok.AccessToken, exp); err != nil {
			fail(err)
		}
		fmt.Printf("logged in as %s (token expires %s)\n", *u, exp.Format(time.RFC3339))

	case "logout":
		if err := os.Remove(tokenPath()); err != nil && !os.IsNotExist(err) {
			fail(err)
		}
		fmt.Println("logged out")

	case "whoami":
		tok, err := loadToken()
		if err != nil {
			fail(err)
		}
		sub, exp := tokenSubject(tok)
		fmt.Printf("%s (token expires %s)\n", sub, exp.Format(time.RFC3339))

	case "list":
		var notes []noteOut
		if err := mustAuth(*addr).do(ctx, http.MethodGet, "/notes", nil, &notes); err != nil {
			fail(err)
		}
		printJSON(notes)

	case "get":
		fs := flag.NewFlagSet("get", flag.ExitOnError)
		id := fs.Int64("id", 0, "note id")
		_ = fs.Parse(rest)
		if *id <= 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		var note noteOut
		if err := mustAuth(*addr).do(ctx, http.MethodGet, fmt.Sprintf("/notes/%d", *id), nil, &note); err != nil {
			fail(err)
		}
		printJSON(note)

	case "add":
		fs := flag.NewFlagSet("add", flag.ExitOnError)
		title := fs.String("title", "", "note title")
		content := fs.String("content", "", "note content")
		_ = fs.Parse(rest)
		body := map[string]any{"title": *title}
		if setFlags(fs)["content"] {
			body["content"] = *content
		}
		var note noteOut
		if err := mustAuth(*addr).do(ctx, http.MethodPost, "/notes", body, &note); err != nil {
			fail(err)
		}
		printJSON(note)

	case "edit":
		fs := flag.NewFlagSet("edit", flag.ExitOnError)
		id := fs.Int64("id", 0, "note id")
		title := fs.String("title", "", "new title")
		content := fs.String("content", "", "new content")
		_ = fs.Parse(rest)
		if *id <= 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		seen := setFlags(fs)
		body := map[string]any{}
		if seen["title"] {
			body["title"] = *title
		}
		if seen["content"] {
			body["content"] = *content
		}
		var note noteOut
		if err := mustAuth(*addr).do(ctx, http.MethodPut, fmt.Sprintf("/notes/%d", *id), body, &note); err != nil {
			fail(err)
		}
		printJSON(note)

	case "rm":
		fs := flag.NewFlagSet("rm", flag.ExitOnError)
		id := fs.Int64("id", 0, "note id")
		_ = fs.Parse(rest)
		if *id <= 0 {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		if err := mustAuth(*addr).do(ctx, http.MethodDelete, fmt.Sprintf("/notes/%d", *id), nil, nil); err != nil {
			fail(err)
		}
		fmt.Println("deleted")

	case "plans":
		fs := flag.NewFlagSet("plans", flag.ExitOnError)
		note := fs.Int64("note", 0, "note id")
		_ = fs.Parse(rest)
		if *note <= 0 {
			fmt.Fprintln(os.Stderr, "need -note")
			os.Exit(1)
		}
		var plans []planOut
		if err := mustAuth(*addr).do(ctx, http.MethodGet, fmt.Sprintf("/notes/%d/plans", *note), nil, &plans); err != nil {
			fail(err)
		}
		printJSON(plans)

	case "plan-add":
		fs := flag.NewFlagSet("plan-add", flag.ExitOnError)
		note := fs.Int64("note", 0, "note id")
		title := fs.String("title", "", "plan title")
		done := fs.Bool("done", false, "already done")
		_ = fs.Parse(rest)
		if *note <= 0 {
			fmt.Fprintln(os.Stderr, "need -note")
			os.Exit(1)
		}
		body := map[string]any{"title": *title, "is_done": *done}
		var plan planOut
		if err := mustAuth(*addr).do(ctx, http.MethodPost, fmt.Sprintf("/notes/%d/plans", *note), body, &plan); err != nil {
			fail(err)
		}
		printJSON(plan)

	case "plan-edit":
		fs := flag.NewFlagSet("plan-edit", flag.ExitOnError)
		note := fs.Int64("note", 0, "note id")
		id := fs.Int64("id", 0, "plan id")
		title := fs.String("title", "", "new title")
		done := fs.Bool("done", false, "completion flag")
		_ = fs.Parse(rest)
		if *note <= 0 || *id <= 0 {
			fmt.Fprintln(os.Stderr, "need -note and -id")
			os.Exit(1)
		}
		seen := setFlags(fs)
		body := map[string]any{}
		if seen["title"] {
			body["title"] = *title
		}
		if seen["done"] {
			body["is_done"] = *done
		}
		var plan planOut
		if err := mustAuth(*addr).do(ctx, http.MethodPut, fmt.Sprintf("/notes/%d/plans/%d", *note, *id), body, &plan); err != nil {
			fail(err)
		}
		printJSON(plan)

	case "plan-rm":
		fs := flag.NewFlagSet("plan-rm", flag.ExitOnError)
		note := fs.Int64("note", 0, "note id")
		id := fs.Int64("id", 0, "plan id")
		_ = fs.Parse(rest)
		if *note <= 0 || *id <= 0 {
			fmt.Fprintln(os.Stderr, "need -note and -id")
			os.Exit(1)
		}
		if err := mustAuth(*addr).do(ctx, http.MethodDelete, fmt.Sprintf("/notes/%d/plans/%d", *note, *id), nil, nil); err != nil {
			fail(err)
		}
		fmt.Println("deleted")

	default:
		usage()
	}
}

// tokenExpiry reads the exp claim without verifying the signature; the server
// is the authority, the client only needs a cache hint.
func tokenExpiry(tok string) time.Time {
	_, exp := tokenSubject(tok)
	return exp
}

func tokenSubject(tok string) (string, time.Time) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tok, &claims); err != nil {
		return "", time.Time{}
	}
	exp := time.Time{}
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return claims.Subject, exp
}
