// Package web is a server-rendered front end of the task manager API.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/schema"
	"github.com/yukikurage/taskmanager/internal/apiclient"
	"github.com/yukikurage/taskmanager/internal/authsession"
	"github.com/yukikurage/taskmanager/internal/config"
	"github.com/yukikurage/taskmanager/internal/constants"
	"github.com/yukikurage/taskmanager/internal/dto"
	"github.com/yukikurage/taskmanager/internal/guard"
	"github.com/yukikurage/taskmanager/internal/session"
	"github.com/yukikurage/taskmanager/internal/tasklist"
)

//go:embed templates/*.html
var templatesFS embed.FS

const stateKey = "web.state"

// Options configures an App.
type Options struct {
	APIBaseURL string
	// HTTPClient is used for API calls when set.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// App serves the web client.
type App struct {
	opts    Options
	logger  *slog.Logger
	decoder *schema.Decoder
	views   *template.Template
}

// New creates an App.
func New(opts Options) (*App, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	views, err := template.New("").Funcs(viewFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &App{
		opts:    opts,
		logger:  opts.Logger,
		decoder: decoder,
		views:   views,
	}, nil
}

// NewSessionStore returns the cookie store, or the redis store when
// cfg.WebSessionStore is "redis".
func NewSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.WebSessionStore {
	case "cookie", "":
		store = cookie.NewStore([]byte(cfg.WebSessionSecret))
	case "redis":
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redis.NewStore(
			constants.RedisPoolSize,
			"tcp",
			redisAddr,
			"",
			"",
			[]byte(cfg.WebSessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis store: %w", err)
		}
		store = rs
	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.WebSessionStore)
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// Router builds the gin engine over store.
func (a *App) Router(store sessions.Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.SetHTMLTemplate(a.views)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	pages := r.Group("/")
	pages.Use(sessions.Sessions(constants.SessionCookieName, store), a.wire())
	{
		pages.GET("/login", a.showLogin)
		pages.POST("/login", a.login)
		pages.GET("/register", a.showRegister)
		pages.POST("/register", a.register)
		pages.POST("/logout", a.logout)

		protected := pages.Group("/")
		protected.Use(requireAuth())
		{
			protected.GET("/", a.dashboard)
			protected.POST("/tasks", a.createTask)
			protected.POST("/tasks/:id", a.updateTask)
			protected.POST("/tasks/:id/delete", a.deleteTask)
		}
	}

	return r
}

// requestState is the client stack of one request. It is rebuilt from the
// visitor's session every time, which makes each request a fresh start of
// the client.
type requestState struct {
	sess  sessions.Session
	nav   *deferredNavigator
	store *session.Store
	api   *apiclient.Client
	auth  *authsession.Manager
	tasks *tasklist.Controller
}

func (a *App) wire() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		st := &requestState{
			sess:  sess,
			nav:   &deferredNavigator{},
			store: session.NewStore(sessionStorage{s: sess}),
		}

		logger := a.logger.With(slog.String("path", c.Request.URL.Path))
		st.api = apiclient.New(apiclient.Config{
			BaseURL:    a.opts.APIBaseURL,
			HTTPClient: a.opts.HTTPClient,
			Logger:     logger,
		}, st.store, st.nav)
		st.auth = authsession.New(st.api, st.store)
		st.tasks = tasklist.New(st.api, logger)

		c.Set(stateKey, st)
		c.Next()
	}
}

func state(c *gin.Context) *requestState {
	return c.MustGet(stateKey).(*requestState)
}

func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := guard.Check(state(c).auth)
		if !decision.Allow {
			c.Redirect(http.StatusSeeOther, decision.Redirect)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Flash kinds
const (
	flashError = "error"
	flashInfo  = "info"
)

func (st *requestState) flash(kind, message string) {
	st.sess.AddFlash(message, kind)
	_ = st.sess.Save()
}

func (st *requestState) flashes() (errs, infos []string) {
	for _, f := range st.sess.Flashes(flashError) {
		if s, ok := f.(string); ok {
			errs = append(errs, s)
		}
	}
	for _, f := range st.sess.Flashes(flashInfo) {
		if s, ok := f.(string); ok {
			infos = append(infos, s)
		}
	}
	if len(errs)+len(infos) > 0 {
		_ = st.sess.Save()
	}
	return errs, infos
}

// sessionExpired redirects to the login page if an API call ended the session.
func (st *requestState) sessionExpired(c *gin.Context) bool {
	if !st.nav.redirected {
		return false
	}
	st.flash(flashError, "Your session has expired. Please sign in again.")
	c.Redirect(http.StatusSeeOther, guard.LoginPath)
	return true
}

// backTo returns a dashboard URL carried by a form, or "/" when it is not one.
func backTo(c *gin.Context) string {
	back := c.PostForm("back")
	if back == "/" || strings.HasPrefix(back, "/?") {
		return back
	}
	return "/"
}

var viewFuncs = template.FuncMap{
	"statuses":   dto.Statuses,
	"priorities": dto.Priorities,
	"lower":      strings.ToLower,
	"label": func(v any) string {
		s := strings.ReplaceAll(fmt.Sprint(v), "_", " ")
		if s == "" {
			return s
		}
		return s[:1] + strings.ToLower(s[1:])
	},
	"date": func(d *dto.Date) string {
		if d == nil {
			return ""
		}
		return d.String()
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}
