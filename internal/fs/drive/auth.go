package drive

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

var (
	// ScopeReadOnly 同步/下载只需要只读权限
	ScopeReadOnly = drive.DriveReadonlyScope
	// ScopeFile 上传/共享只操作本应用创建的文件
	ScopeFile = drive.DriveFileScope

	// DefaultScopes 所有子命令共用同一个 token 文件，因此一次申请全部权限
	DefaultScopes = []string{ScopeReadOnly, ScopeFile}
)

// ErrNoCredentials credentials.json 不存在
var ErrNoCredentials = errors.New("oauth client credentials file not found")

// AuthOptions 认证参数
type AuthOptions struct {
	CredentialsFile string
	TokenFile       string
	Scopes          []string

	// Prompt 用于输出授权链接 (默认 os.Stderr)
	Prompt io.Writer
}

// NewHTTPClient 返回带自动刷新 token 的 HTTP 客户端
// 顺序: 读取 token 文件 -> 尝试刷新 -> 失败则重新走浏览器授权 -> 写回 token 文件
func NewHTTPClient(ctx context.Context, opts AuthOptions) (*http.Client, error) {
	if opts.Prompt == nil {
		opts.Prompt = os.Stderr
	}
	if len(opts.Scopes) == 0 {
		opts.Scopes = DefaultScopes
	}

	b, err := os.ReadFile(opts.CredentialsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (download an OAuth 2.0 client ID from the Google Cloud Console)",
				ErrNoCredentials, opts.CredentialsFile)
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	cfg, err := google.ConfigFromJSON(b, opts.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	tok, err := LoadToken(opts.TokenFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("ignoring unreadable token file", "path", opts.TokenFile, "err", err)
	}

	if tok != nil {
		// 过期时由 TokenSource 使用 refresh token 刷新
		fresh, rerr := cfg.TokenSource(ctx, tok).Token()
		if rerr != nil {
			slog.Warn("token refresh failed, starting a new authorization", "err", rerr)
			tok = nil
		} else {
			tok = fresh
		}
	}

	if tok == nil {
		tok, err = authorize(ctx, cfg, opts.Prompt)
		if err != nil {
			return nil, fmt.Errorf("authorize: %w", err)
		}
	}

	if err := SaveToken(opts.TokenFile, tok); err != nil {
		slog.Warn("failed to save token", "path", opts.TokenFile, "err", err)
	}

	src := &persistingSource{
		base: cfg.TokenSource(ctx, tok),
		path: opts.TokenFile,
		last: tok.AccessToken,
	}
	return oauth2.NewClient(ctx, src), nil
}

// LoadToken 读取缓存的 token
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token %s: %w", path, err)
	}
	return &tok, nil
}

// SaveToken 写入 token 文件 (仅当前用户可读)
func SaveToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0600)
}

// persistingSource 在 access token 变化时写回 token 文件
type persistingSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := SaveToken(s.path, tok); err != nil {
			slog.Warn("failed to persist refreshed token", "path", s.path, "err", err)
		}
	}
	return tok, nil
}

// authorize 在本机回环地址上等待浏览器回调并交换 token
func authorize(ctx context.Context, cfg *oauth2.Config, prompt io.Writer) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen for oauth callback: %w", err)
	}
	defer ln.Close()

	cfg.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())
	state, err := randomState()
	if err != nil {
		return nil, err
	}

	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)
	send := func(r result) {
		select {
		case done <- r:
		default:
		}
	}

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		case q.Get("error") != "":
			fmt.Fprintln(w, "Authorization failed, you may close this window.")
			send(result{err: fmt.Errorf("authorization denied: %s", q.Get("error"))})
		default:
			fmt.Fprintln(w, "Authorization complete, you may close this window.")
			send(result{code: q.Get("code")})
		}
	})}
	go srv.Serve(ln)
	defer srv.Close()

	fmt.Fprintf(prompt, "Open the following URL in your browser to authorize access:\n\n%s\n\n",
		cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		return cfg.Exchange(ctx, res.code)
	}
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
