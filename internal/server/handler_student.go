package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/doanvh/studentsvc/internal/observability"
	"github.com/doanvh/studentsvc/internal/student"
)

const deleteSuccessMessage = "Xóa học viên thành công"

type studentHandler struct {
	students *student.Service
	metrics  *observability.Metrics
	logger   observability.Logger
}

func newStudentHandler(students *student.Service, metrics *observability.Metrics, logger observability.Logger) *studentHandler {
	return &studentHandler{
		students: students,
		metrics:  metrics,
		logger:   logger,
	}
}

// instrument counts the request and returns a function observing its
// duration under the given endpoint label.
func (h *studentHandler) instrument(endpoint string) func() {
	if h.metrics == nil {
		return func() {}
	}
	h.metrics.IncStudentRequests()
	timer := h.metrics.StartTimer()
	return func() {
		h.metrics.ObserveSince(timer, endpoint)
	}
}

func (h *studentHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, student.ErrNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, student.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("student operation failed",
			observability.Error(err),
		)
		c.Status(http.StatusInternalServerError)
	}
}

func (h *studentHandler) list(c *gin.Context) {
	defer h.instrument(observability.EndpointGetAllStudents)()

	students, err := h.students.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

func (h *studentHandler) get(c *gin.Context) {
	defer h.instrument(observability.EndpointGetStudentByID)()

	id, err := parseID(c)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	s, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, s)
}

func (h *studentHandler) searchByName(c *gin.Context) {
	defer h.instrument(observability.EndpointSearchByName)()

	students, err := h.students.SearchByName(c.Request.Context(), c.Query("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

func (h *studentHandler) searchBySchool(c *gin.Context) {
	defer h.instrument(observability.EndpointSearchBySchool)()

	students, err := h.students.SearchBySchool(c.Request.Context(), c.Query("school"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

func (h *studentHandler) create(c *gin.Context) {
	defer h.instrument(observability.EndpointCreateStudent)()

	var s student.Student
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.students.Create(c.Request.Context(), s)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, created)
}

func (h *studentHandler) update(c *gin.Context) {
	defer h.instrument(observability.EndpointUpdateStudent)()

	id, err := parseID(c)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	var s student.Student
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.students.Update(c.Request.Context(), id, s)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *studentHandler) delete(c *gin.Context) {
	defer h.instrument(observability.EndpointDeleteStudent)()

	id, err := parseID(c)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	deleted, err := h.students.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !deleted {
		c.Status(http.StatusNotFound)
		return
	}

	c.String(http.StatusOK, deleteSuccessMessage)
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
