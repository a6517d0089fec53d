package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskmanager/internal/apiclient"
	"github.com/yukikurage/taskmanager/internal/dto"
	"github.com/yukikurage/taskmanager/internal/tasklist"
)

type authPage struct {
	Errors   []string
	Infos    []string
	Email    string
	Username string
}

func (a *App) showLogin(c *gin.Context) {
	st := state(c)
	if st.auth.IsAuthenticated() {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	errs, infos := st.flashes()
	c.HTML(http.StatusOK, "login.html", authPage{Errors: errs, Infos: infos})
}

func (a *App) login(c *gin.Context) {
	st := state(c)
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		st.flash(flashError, "Email and password are required.")
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	if err := st.auth.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		a.logger.WarnContext(c.Request.Context(), "login failed", slog.String("email", req.Email), slog.Any("error", err))
		st.flash(flashError, failureMessage(err, "Invalid email or password."))
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) showRegister(c *gin.Context) {
	st := state(c)
	if st.auth.IsAuthenticated() {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	errs, infos := st.flashes()
	c.HTML(http.StatusOK, "register.html", authPage{Errors: errs, Infos: infos})
}

func (a *App) register(c *gin.Context) {
	st := state(c)
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusUnprocessableEntity, "register.html", authPage{
			Errors:   []string{"Username (3-50 characters), a valid email and a password of at least 6 characters are required."},
			Email:    req.Email,
			Username: req.Username,
		})
		return
	}

	if err := st.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
		a.logger.WarnContext(c.Request.Context(), "registration failed", slog.String("email", req.Email), slog.Any("error", err))
		c.HTML(http.StatusUnprocessableEntity, "register.html", authPage{
			Errors:   []string{failureMessage(err, "Registration failed.")},
			Email:    req.Email,
			Username: req.Username,
		})
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) logout(c *gin.Context) {
	st := state(c)
	if err := st.auth.Logout(); err != nil {
		a.logger.ErrorContext(c.Request.Context(), "logout failed", slog.Any("error", err))
	}
	st.flash(flashInfo, "You have been signed out.")
	c.Redirect(http.StatusSeeOther, "/login")
}

// dashboardQuery is the query string of the dashboard.
type dashboardQuery struct {
	Q        string `schema:"q"`
	Status   string `schema:"status"`
	Priority string `schema:"priority"`
	New      bool   `schema:"new"`
	Edit     int64  `schema:"edit"`
}

func (q dashboardQuery) filter() tasklist.Filter {
	return tasklist.Filter{Query: q.Q, Status: normalizeEnum(q.Status), Priority: normalizeEnum(q.Priority)}
}

// normalizeEnum upper-cases a status or priority filter, leaving empty and
// "all" as they are.
func normalizeEnum(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, tasklist.All) {
		return strings.ToLower(v)
	}
	return strings.ToUpper(v)
}

// back returns the filter part of the query as a dashboard URL.
func (q dashboardQuery) back() string {
	v := url.Values{}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Priority != "" {
		v.Set("priority", q.Priority)
	}
	if len(v) == 0 {
		return "/"
	}
	return "/?" + v.Encode()
}

type dashboardPage struct {
	User     dto.User
	Errors   []string
	Infos    []string
	Query    dashboardQuery
	Back     string
	Tasks    []dto.Task
	Total    int
	Counts   map[dto.TaskStatus]int
	Form     *tasklist.Form
	FormDue  string
	// EditingID is the id of the task in an open edit form, or 0.
	EditingID int64
	Filtered bool
}

func (a *App) decodeQuery(c *gin.Context) dashboardQuery {
	var q dashboardQuery
	if err := a.decoder.Decode(&q, c.Request.URL.Query()); err != nil {
		a.logger.DebugContext(c.Request.Context(), "ignoring malformed dashboard query", slog.Any("error", err))
		return dashboardQuery{}
	}
	q.Status, q.Priority = normalizeEnum(q.Status), normalizeEnum(q.Priority)
	return q
}

func (a *App) dashboard(c *gin.Context) {
	st := state(c)
	q := a.decodeQuery(c)

	var loadErr error
	if err := st.tasks.Refresh(c.Request.Context()); err != nil {
		if st.sessionExpired(c) {
			return
		}
		loadErr = err
	}
	st.tasks.SetFilter(q.filter())

	switch {
	case q.New:
		st.tasks.OpenCreate()
	case q.Edit > 0:
		if t, ok := st.tasks.Find(q.Edit); ok {
			st.tasks.OpenEdit(t)
		}
	}

	page := a.page(st, q)
	if loadErr != nil {
		page.Errors = append(page.Errors, failureMessage(loadErr, "Failed to load tasks."))
	}
	c.HTML(http.StatusOK, "dashboard.html", page)
}

func (a *App) page(st *requestState, q dashboardQuery) dashboardPage {
	errs, infos := st.flashes()
	user, _ := st.auth.User()
	page := dashboardPage{
		User:     user,
		Errors:   errs,
		Infos:    infos,
		Query:    q,
		Back:     q.back(),
		Tasks:    st.tasks.Visible(),
		Total:    len(st.tasks.Tasks()),
		Counts:   st.tasks.Counts(),
		Filtered: st.tasks.Filter().Active(),
	}
	if form, ok := st.tasks.Form(); ok {
		page.Form = &form
		page.EditingID = derefID(form.EditingID)
		if form.Draft.DueDate != nil {
			page.FormDue = form.Draft.DueDate.String()
		}
	}
	return page
}

// taskForm is the posted create/edit form.
type taskForm struct {
	Title       string `schema:"title"`
	Description string `schema:"description"`
	Status      string `schema:"status"`
	Priority    string `schema:"priority"`
	DueDate     string `schema:"dueDate"`
}

func (a *App) decodeTaskForm(c *gin.Context) (dto.TaskDraft, string, error) {
	var f taskForm
	if err := c.Request.ParseForm(); err != nil {
		return dto.TaskDraft{}, "", err
	}
	if err := a.decoder.Decode(&f, c.Request.PostForm); err != nil {
		return dto.TaskDraft{}, "", err
	}

	draft := dto.TaskDraft{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Status:      dto.TaskStatus(strings.ToUpper(f.Status)),
		Priority:    dto.TaskPriority(strings.ToUpper(f.Priority)),
	}
	due, err := dto.ParseOptionalDate(strings.TrimSpace(f.DueDate))
	if err != nil {
		return draft, f.DueDate, err
	}
	draft.DueDate = due
	return draft, f.DueDate, nil
}

func (a *App) createTask(c *gin.Context) {
	a.saveTask(c, nil)
}

func (a *App) updateTask(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.String(http.StatusBadRequest, "invalid task id")
		return
	}
	a.saveTask(c, &id)
}

func (a *App) saveTask(c *gin.Context, editingID *int64) {
	st := state(c)
	ctx := c.Request.Context()
	back := backTo(c)
	q := a.decodeBack(back)

	draft, rawDue, formErr := a.decodeTaskForm(c)
	if formErr != nil {
		a.rerender(c, st, q, draft, editingID, rawDue, "Due date must be a date (YYYY-MM-DD).")
		return
	}

	if err := st.tasks.CreateOrUpdate(ctx, draft, editingID); err != nil {
		if st.sessionExpired(c) {
			return
		}
		if _, open := st.tasks.Form(); !open {
			// saved, but the following refresh failed
			st.flash(flashError, failureMessage(err, "Failed to load tasks."))
			c.Redirect(http.StatusSeeOther, back)
			return
		}
		a.rerender(c, st, q, draft, editingID, rawDue, failureMessage(err, "Failed to save task."))
		return
	}

	if editingID != nil {
		st.flash(flashInfo, "Task updated.")
	} else {
		st.flash(flashInfo, "Task created.")
	}
	c.Redirect(http.StatusSeeOther, back)
}

// rerender shows the dashboard with the failed form still open.
func (a *App) rerender(c *gin.Context, st *requestState, q dashboardQuery, draft dto.TaskDraft, editingID *int64, rawDue, message string) {
	if len(st.tasks.Tasks()) == 0 {
		if err := st.tasks.Refresh(c.Request.Context()); err != nil && st.sessionExpired(c) {
			return
		}
	}
	st.tasks.SetFilter(q.filter())
	if _, open := st.tasks.Form(); !open {
		if t, ok := st.tasks.Find(derefID(editingID)); ok {
			st.tasks.OpenEdit(t)
		} else {
			st.tasks.OpenCreate()
		}
		_ = st.tasks.UpdateDraft(draft)
	}

	page := a.page(st, q)
	page.Errors = append(page.Errors, message)
	page.FormDue = rawDue
	c.HTML(http.StatusUnprocessableEntity, "dashboard.html", page)
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

func (a *App) decodeBack(back string) dashboardQuery {
	var q dashboardQuery
	u, err := url.Parse(back)
	if err != nil {
		return q
	}
	if err := a.decoder.Decode(&q, u.Query()); err != nil {
		return dashboardQuery{}
	}
	q.New, q.Edit = false, 0
	return q
}

func (a *App) deleteTask(c *gin.Context) {
	st := state(c)
	back := backTo(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.String(http.StatusBadRequest, "invalid task id")
		return
	}

	if err := st.tasks.Delete(c.Request.Context(), id); err != nil {
		if st.sessionExpired(c) {
			return
		}
		st.flash(flashError, failureMessage(err, "Failed to delete task."))
		c.Redirect(http.StatusSeeOther, back)
		return
	}

	st.flash(flashInfo, "Task deleted.")
	c.Redirect(http.StatusSeeOther, back)
}

// failureMessage turns an error into text for the visitor.
func failureMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, tasklist.ErrTitleRequired):
		return "Title is required."
	case errors.Is(err, apiclient.ErrNotFound):
		return "Task not found."
	}
	var statusErr *apiclient.StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" && statusErr.StatusCode < http.StatusInternalServerError {
		return statusErr.Message
	}
	return fallback
}
