// Command feed-smoke drives a running server end to end: two signups, a feed
// socket, and the post/like/comment/delete events it must observe.
//
//	go run ./tools/scripts/feed-smoke.go -base http://127.0.0.1:5000
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

type feedEvent struct {
	Type      string `json:"type"`
	PostID    string `json:"post_id"`
	CommentID string `json:"comment_id"`
	UserID    string `json:"user_id"`
}

type account struct {
	name  string
	id    string
	token string
}

func main() {
	var (
		base    = flag.String("base", "http://127.0.0.1:5000", "API base URL")
		origin  = flag.String("origin", "", "Origin header for the websocket handshake")
		timeout = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
		verbose = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	if err := validateBaseURL(*base); err != nil {
		fatalf("invalid -base: %v", err)
	}

	root := context.Background()
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())

	alice := mustSignup(root, *base, "alice"+suffix, *timeout)
	bob := mustSignup(root, *base, "bob"+suffix, *timeout)
	if *verbose {
		fmt.Printf("signed up: alice=%s bob=%s\n", alice.id, bob.id)
	}

	conn := mustDialFeed(root, *base, *origin, alice.token, *timeout)
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	var post struct {
		Post struct {
			ID string `json:"id"`
		} `json:"post"`
	}
	mustCall(root, http.MethodPost, *base+"/api/posts", bob.token, map[string]string{"text": "smoke " + suffix}, http.StatusCreated, &post, *timeout)
	mustExpect(root, conn, "post.created", post.Post.ID, *timeout)

	mustCall(root, http.MethodPost, *base+"/api/posts/"+post.Post.ID+"/like", alice.token, nil, http.StatusCreated, nil, *timeout)
	mustExpect(root, conn, "post.liked", post.Post.ID, *timeout)

	mustCall(root, http.MethodPost, *base+"/api/posts/"+post.Post.ID+"/comment", alice.token, map[string]string{"comment": "nice"}, http.StatusCreated, nil, *timeout)
	mustExpect(root, conn, "comment.created", post.Post.ID, *timeout)

	mustCall(root, http.MethodDelete, *base+"/api/posts/"+post.Post.ID, alice.token, nil, http.StatusForbidden, nil, *timeout)

	mustCall(root, http.MethodDelete, *base+"/api/posts/"+post.Post.ID, bob.token, nil, http.StatusOK, nil, *timeout)
	mustExpect(root, conn, "post.deleted", post.Post.ID, *timeout)

	mustCall(root, http.MethodGet, *base+"/api/posts/"+post.Post.ID, alice.token, nil, http.StatusNotFound, nil, *timeout)

	fmt.Printf("OK: post_id=%s alice=%s bob=%s\n", post.Post.ID, alice.id, bob.id)
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("missing host")
	}
	return nil
}

func mustSignup(parent context.Context, base, name string, stepTimeout time.Duration) account {
	var out struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	mustCall(parent, http.MethodPost, base+"/api/auth/signup", "", map[string]string{
		"username": name,
		"email":    name + "@smoke.test",
		"password": "smoke-password",
	}, http.StatusCreated, &out, stepTimeout)

	if out.Token == "" || out.User.ID == "" {
		fatalf("signup %s: missing token or user id", name)
	}
	return account{name: name, id: out.User.ID, token: out.Token}
}

func mustCall(parent context.Context, method, target, bearer string, body any, wantStatus int, dst any, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			fatalf("%s %s: encode: %v", method, target, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, target, &buf)
	if err != nil {
		fatalf("%s %s: %v", method, target, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatalf("%s %s: %v", method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != wantStatus {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		fatalf("%s %s: status=%d want=%d error=%q", method, target, resp.StatusCode, wantStatus, e.Error)
	}
	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			fatalf("%s %s: decode: %v", method, target, err)
		}
	}
}

func mustDialFeed(parent context.Context, base, origin, bearer string, stepTimeout time.Duration) *websocket.Conn {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/api/feed"

	h := http.Header{}
	h.Set("Authorization", "Bearer "+bearer)
	if strings.TrimSpace(origin) != "" {
		h.Set("Origin", origin)
	}

	conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPHeader: h})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			fatalf("feed dial: %v (http=%d)", err, resp.StatusCode)
		}
		fatalf("feed dial: %v", err)
	}
	return conn
}

// mustExpect reads until an event of type typ for postID arrives. Events for
// other posts are skipped since the feed is shared.
func mustExpect(parent context.Context, conn *websocket.Conn, typ, postID string, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	for {
		var ev feedEvent
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			fatalf("waiting for %s on %s: %v", typ, postID, err)
		}
		if ev.Type == typ && ev.PostID == postID {
			return
		}
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
