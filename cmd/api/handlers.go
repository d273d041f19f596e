package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classtrack/internal/attendance"
	"classtrack/internal/auth"
	"classtrack/internal/cache"
	"classtrack/internal/config"
	"classtrack/internal/queue"
	"classtrack/internal/roster"
	"classtrack/internal/task"
)

type api struct {
	cfg       config.App
	log       *zap.Logger
	att       *attendance.Service
	tasks     *task.Service
	roster    *roster.Service
	queue     queue.Queue
	summaries *cache.SummaryCache
}

func (a *api) routes(r *gin.Engine) {
	v1 := r.Group("/v1")
	v1.POST("/auth/signup", a.signup)
	v1.POST("/auth/login", a.login)
	v1.POST("/auth/refresh", a.refresh)

	user := v1.Group("", auth.RequireUser(a.cfg.JWTSigningKey, a.cfg.JWTIssuer))
	user.GET("/me", a.me)
	user.PATCH("/me", a.updateMe)
	user.GET("/tasks", a.listTasks)
	user.POST("/tasks/:id/attendance", a.markAttendance)
	user.GET("/attendance", a.myAttendance)

	admin := user.Group("/admin", auth.RequireAdmin())
	admin.POST("/tasks", a.createTask)
	admin.DELETE("/tasks/:id", a.deleteTask)
	admin.GET("/students", a.listStudents)
	admin.PATCH("/students/:id", a.updateStudent)
	admin.DELETE("/students/:id", a.deleteStudent)
	admin.GET("/attendance", a.listRecords)
	admin.POST("/attendance", a.setRecord)
	admin.GET("/attendance/summary", a.summaryView)
	admin.PATCH("/attendance/:id", a.correctRecord)
	admin.DELETE("/attendance/:id", a.deleteRecord)
}

func (a *api) issueTokens(c *gin.Context, st roster.Student, status int) {
	tokens, err := auth.Issue(st.ID, st.Role, a.cfg.JWTIssuer, a.cfg.JWTSigningKey, a.cfg.AccessTTL, a.cfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(status, gin.H{
		"student":       st,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

func (a *api) signup(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone"`
		Semester string `json:"semester"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := a.roster.Signup(c.Request.Context(), roster.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Semester: req.Semester,
		Password: req.Password,
	})
	switch {
	case errors.Is(err, roster.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, roster.ErrMissingFields), errors.Is(err, roster.ErrPasswordLength):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
	default:
		a.issueTokens(c, st, http.StatusCreated)
	}
}

func (a *api) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := a.roster.Authenticate(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, roster.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
	default:
		a.issueTokens(c, st, http.StatusOK)
	}
}

func (a *api) refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims, err := auth.Parse(req.RefreshToken, a.cfg.JWTSigningKey, a.cfg.JWTIssuer)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	// Re-read the profile so a role change invalidates old tokens on
	// the next refresh.
	st, err := a.roster.Get(c.Request.Context(), claims.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account no longer exists"})
		return
	}
	a.issueTokens(c, st, http.StatusOK)
}

func (a *api) me(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	st, err := a.roster.Get(c.Request.Context(), claims.Subject)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": st})
}

func (a *api) updateMe(c *gin.Context) {
	claims := auth.ClaimsFrom(c)
	var req struct {
		Name     *string `json:"name"`
		Phone    *string `json:"phone"`
		Semester *string `json:"semester"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := a.roster.UpdateProfile(c.Request.Context(), claims.Subject, roster.ProfilePatch{
		Name:     req.Name,
		Phone:    req.Phone,
		Semester: req.Semester,
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// taskView is a task annotated with the caller's window and mark state.
type taskView struct {
	task.Task
	WindowState     string             `json:"window_state"`
	WindowMalformed bool               `json:"window_malformed,omitempty"`
	MyStatus        *attendance.Status `json:"my_status,omitempty"`
}

func (a *api) listTasks(c *gin.Context) {
	ctx := c.Request.Context()
	claims := auth.ClaimsFrom(c)

	tasks, err := a.tasks.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	recs, err := a.att.ListRecords(ctx, attendance.RecordFilter{StudentID: claims.Subject})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ix := attendance.BuildIndex(recs)

	now := time.Now().UTC()
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		cls := a.att.Classify(t, now)
		v := taskView{Task: t, WindowState: cls.State.String(), WindowMalformed: cls.Malformed}
		if rec, ok := ix.Lookup(claims.Subject, t.ID); ok {
			status := rec.Status
			v.MyStatus = &status
		}
		views = append(views, v)
	}
	c.JSON(http.StatusOK, gin.H{"tasks": views, "now": now})
}

func (a *api) markAttendance(c *gin.Context) {
	ctx := c.Request.Context()
	claims := auth.ClaimsFrom(c)
	taskID := c.Param("id")
	now := time.Now().UTC()

	res, err := a.att.Mark(ctx, claims.Subject, taskID, now)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch res.Outcome {
	case attendance.MarkCreated:
		if err := a.queue.Publish(ctx, queue.Event{Type: queue.TypeAttendanceChanged, StudentID: claims.Subject, TaskID: taskID}); err != nil {
			a.log.Warn("queue publish failed", zap.Error(err))
		}
		c.JSON(http.StatusCreated, gin.H{"status": res.Outcome.String(), "record": res.Record})
	case attendance.MarkAlreadyMarked:
		c.JSON(http.StatusOK, gin.H{"status": res.Outcome.String()})
	default:
		// Window refusals include the bounds so the client can show
		// when marking is possible.
		t, terr := a.tasks.Get(ctx, taskID)
		body := gin.H{"status": res.Outcome.String()}
		if terr == nil {
			body["attendance_start"] = t.AttendanceStart
			body["attendance_end"] = t.AttendanceEnd
		}
		c.JSON(http.StatusConflict, body)
	}
}

func (a *api) myAttendance(c *gin.Context) {
	ctx := c.Request.Context()
	claims := auth.ClaimsFrom(c)

	history, err := a.att.History(ctx, claims.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	summary, err := a.att.StudentSummary(ctx, claims.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary, "records": history})
}

func (a *api) createTask(c *gin.Context) {
	var req struct {
		Title           string     `json:"title" binding:"required"`
		Description     string     `json:"description"`
		Link            string     `json:"link"`
		CourseName      string     `json:"course_name"`
		AttendanceStart *time.Time `json:"attendance_start"`
		AttendanceEnd   *time.Time `json:"attendance_end"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := a.tasks.Create(c.Request.Context(), task.CreateInput{
		Title:           req.Title,
		Description:     req.Description,
		Link:            req.Link,
		CourseName:      req.CourseName,
		AttendanceStart: req.AttendanceStart,
		AttendanceEnd:   req.AttendanceEnd,
	})
	switch {
	case errors.Is(err, task.ErrTitleRequired),
		errors.Is(err, task.ErrUnknownCourse),
		errors.Is(err, task.ErrInvalidWindow):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		if err := a.queue.Publish(c.Request.Context(), queue.Event{Type: queue.TypeTaskChanged, TaskID: created.ID}); err != nil {
			a.log.Warn("queue publish failed", zap.Error(err))
		}
		c.JSON(http.StatusCreated, gin.H{"task": created})
	}
}

func (a *api) deleteTask(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := a.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := a.queue.Publish(ctx, queue.Event{Type: queue.TypeTaskDeleted, TaskID: id}); err != nil {
		a.log.Warn("queue publish failed", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

func (a *api) listStudents(c *gin.Context) {
	students, err := a.roster.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

func (a *api) updateStudent(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	var req struct {
		Name     *string `json:"name"`
		Phone    *string `json:"phone"`
		Semester *string `json:"semester"`
		Role     *string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role != nil {
		if err := a.roster.SetRole(ctx, id, *req.Role); err != nil {
			switch {
			case errors.Is(err, roster.ErrUnknownRole):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, roster.ErrStudentNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
	}
	if req.Name != nil || req.Phone != nil || req.Semester != nil {
		err := a.roster.UpdateProfile(ctx, id, roster.ProfilePatch{
			Name:     req.Name,
			Phone:    req.Phone,
			Semester: req.Semester,
		})
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func (a *api) deleteStudent(c *gin.Context) {
	if err := a.roster.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, roster.ErrStudentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *api) listRecords(c *gin.Context) {
	recs, err := a.att.ListRecords(c.Request.Context(), attendance.RecordFilter{
		StudentID: c.Query("student_id"),
		TaskID:    c.Query("task_id"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

func (a *api) summaryView(c *gin.Context) {
	ctx := c.Request.Context()
	if cached, ok, err := a.summaries.Get(ctx); err == nil && ok {
		c.JSON(http.StatusOK, gin.H{"summaries": cached, "cached": true})
		return
	} else if err != nil {
		a.log.Warn("summary cache read failed", zap.Error(err))
	}

	summaries, err := a.att.Summaries(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := a.summaries.Put(ctx, summaries); err != nil {
		a.log.Warn("summary cache write failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"summaries": summaries, "cached": false})
}

func (a *api) setRecord(c *gin.Context) {
	ctx := c.Request.Context()
	var req struct {
		StudentID string            `json:"student_id" binding:"required"`
		TaskID    string            `json:"task_id" binding:"required"`
		Status    attendance.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := a.att.SetStatus(ctx, req.StudentID, req.TaskID, req.Status, time.Now().UTC())
	switch {
	case errors.Is(err, attendance.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, task.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		if err := a.queue.Publish(ctx, queue.Event{Type: queue.TypeAttendanceChanged, StudentID: req.StudentID, TaskID: req.TaskID}); err != nil {
			a.log.Warn("queue publish failed", zap.Error(err))
		}
		c.JSON(http.StatusOK, gin.H{"record": rec})
	}
}

func (a *api) correctRecord(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	var req struct {
		Status attendance.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := a.att.Correct(ctx, id, req.Status)
	switch {
	case errors.Is(err, attendance.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		if err := a.queue.Publish(ctx, queue.Event{Type: queue.TypeAttendanceChanged}); err != nil {
			a.log.Warn("queue publish failed", zap.Error(err))
		}
		c.Status(http.StatusNoContent)
	}
}

func (a *api) deleteRecord(c *gin.Context) {
	ctx := c.Request.Context()
	if err := a.att.Remove(ctx, c.Param("id")); err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := a.queue.Publish(ctx, queue.Event{Type: queue.TypeAttendanceChanged}); err != nil {
		a.log.Warn("queue publish failed", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}
