package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	appAuth "github.com/vicky2929-er/student-smart-hub-sub002/internal/app/auth"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models/dto"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/services"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/middleware"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/auth"
)

// HierarchyController exposes the institute → college → department →
// faculty → student hierarchy.
type HierarchyController struct {
	hierarchy *services.HierarchyService
	analytics *services.AnalyticsService
	authz     *appAuth.AuthorizationService
}

// NewHierarchyController creates a new HierarchyController
func NewHierarchyController(hierarchy *services.HierarchyService, analytics *services.AnalyticsService, authz *appAuth.AuthorizationService) *HierarchyController {
	return &HierarchyController{hierarchy: hierarchy, analytics: analytics, authz: authz}
}

// authorizeParent checks the caller may manage parent. A missing parent is
// left for the service to report as ErrParentNotFound.
func (c *HierarchyController) authorizeParent(ctx *gin.Context, claims *auth.Claims, parent models.Ref) bool {
	err := c.authz.RequireManage(ctx, claims, parent)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		middleware.HandleAPIError(ctx, err)
		return false
	}
	return true
}

// CreateCollege godoc
// @Summary Create a college
// @Description Creates a college under an active institute. Institute accounts may omit instituteId.
// @Tags hierarchy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateCollegeInput true "College"
// @Success 201 {object} dto.StructuredResponse{data=models.College}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Code already used"
// @Failure 422 {object} dto.ErrorResponse "Institute missing or inactive"
// @Router /colleges [post]
func (c *HierarchyController) CreateCollege(ctx *gin.Context) {
	claims, ok := mustClaims(ctx)
	if !ok {
		return
	}
	var in services.CreateCollegeInput
	if !middleware.BindJSON(ctx, &in) {
		return
	}
	if in.InstituteID == "" && claims.Role == auth.RoleInstitute {
		in.InstituteID = claims.SubjectID
	}
	if !c.authorizeParent(ctx, claims, models.Ref{Kind: models.KindInstitute, ID: in.InstituteID}) {
		return
	}

	college, err := c.hierarchy.CreateCollege(ctx, in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, college, "College created successfully")
}

// CreateDepartment godoc
// @Summary Create a department
// @Tags hierarchy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateDepartmentInput true "Department"
// @Success 201 {object} dto.StructuredResponse{data=models.Department}
// @Failure 422 {object} dto.ErrorResponse "College missing or inactive"
// @Router /departments [post]
func (c *HierarchyController) CreateDepartment(ctx *gin.Context) {
	claims, ok := mustClaims(ctx)
	if !ok {
		return
	}
	var in services.CreateDepartmentInput
	if !middleware.BindJSON(ctx, &in) {
		return
	}
	if !c.authorizeParent(ctx, claims, models.Ref{Kind: models.KindCollege, ID: in.CollegeID}) {
		return
	}

	dept, err := c.hierarchy.CreateDepartment(ctx, in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, dept, "Department created successfully")
}

// CreateFaculty godoc
// @Summary Create a faculty member
// @Tags hierarchy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateFacultyInput true "Faculty"
// @Success 201 {object} dto.StructuredResponse{data=models.Faculty}
// @Failure 422 {object} dto.ErrorResponse "Department missing or inactive"
// @Router /faculties [post]
func (c *HierarchyController) CreateFaculty(ctx *gin.Context) {
	claims, ok := mustClaims(ctx)
	if !ok {
		return
	}
	var in services.CreateFacultyInput
	if !middleware.BindJSON(ctx, &in) {
		return
	}
	if !c.authorizeParent(ctx, claims, models.Ref{Kind: models.KindDepartment, ID: in.DepartmentID}) {
		return
	}

	faculty, err := c.hierarchy.CreateFaculty(ctx, in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.analytics.Invalidate(ctx, models.Ref{Kind: models.KindDepartment, ID: faculty.DepartmentID})
	respondCreated(ctx, faculty, "Faculty created successfully")
}

// CreateStudent godoc
// @Summary Create a student
// @Description Creates a student in a department, optionally under a coordinator of the same department.
// @Tags hierarchy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateStudentInput true "Student"
// @Success 201 {object} dto.StructuredResponse{data=models.Student}
// @Failure 422 {object} dto.ErrorResponse "Department or coordinator missing, or coordinator in another department"
// @Router /students [post]
func (c *HierarchyController) CreateStudent(ctx *gin.Context) {
	claims, ok := mustClaims(ctx)
	if !ok {
		return
	}
	var in services.CreateStudentInput
	if !middleware.BindJSON(ctx, &in) {
		return
	}
	if !c.authorizeParent(ctx, claims, models.Ref{Kind: models.KindDepartment, ID: in.DepartmentID}) {
		return
	}

	student, err := c.hierarchy.CreateStudent(ctx, in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.invalidateStudent(ctx, student)
	respondCreated(ctx, student, "Student created successfully")
}

func (c *HierarchyController) invalidateStudent(ctx *gin.Context, st *models.Student) {
	refs := []models.Ref{
		{Kind: models.KindStudent, ID: st.ID},
		{Kind: models.KindDepartment, ID: st.DepartmentID},
		{Kind: models.KindFaculty, ID: st.CoordinatorID},
	}
	if instituteID, err := c.authz.InstituteOf(ctx, models.Ref{Kind: models.KindDepartment, ID: st.DepartmentID}); err == nil {
		refs = append(refs, models.Ref{Kind: models.KindInstitute, ID: instituteID})
	}
	c.analytics.Invalidate(ctx, refs...)
}

// get returns a handler that loads one entity of kind by the :id path
// parameter after a view check.
func get[T any](c *HierarchyController, kind models.EntityKind, load func(*gin.Context, string) (*T, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, ok := mustClaims(ctx)
		if !ok {
			return
		}
		id := ctx.Param("id")
		if err := c.authz.RequireView(ctx, claims, models.Ref{Kind: kind, ID: id}); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		v, err := load(ctx, id)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		respondOK(ctx, v, string(kind)+" retrieved successfully")
	}
}

// GetInstitute godoc
// @Summary Get an institute
// @Tags hierarchy
// @Produce json
// @Security BearerAuth
// @Param id path string true "Institute ID"
// @Success 200 {object} dto.StructuredResponse{data=models.Institute}
// @Failure 404 {object} dto.ErrorResponse
// @Router /institutes/{id} [get]
func (c *HierarchyController) GetInstitute() gin.HandlerFunc {
	return get(c, models.KindInstitute, func(ctx *gin.Context, id string) (*models.Institute, error) {
		return c.hierarchy.GetInstitute(ctx, id)
	})
}

// GetCollege godoc
// @Summary Get a college
// @Tags hierarchy
// @Produce json
// @Security BearerAuth
// @Param id path string true "College ID"
// @Success 200 {object} dto.StructuredResponse{data=models.College}
// @Router /colleges/{id} [get]
func (c *HierarchyController) GetCollege() gin.HandlerFunc {
	return get(c, models.KindCollege, func(ctx *gin.Context, id string) (*models.College, error) {
		return c.hierarchy.GetCollege(ctx, id)
	})
}

// GetDepartment godoc
// @Summary Get a department
// @Tags hierarchy
// @Produce json
// @Security BearerAuth
// @Param id path string true "Department ID"
// @Success 200 {object} dto.StructuredResponse{data=models.Department}
// @Router /departments/{id} [get]
func (c *HierarchyController) GetDepartment() gin.HandlerFunc {
	return get(c, models.KindDepartment, func(ctx *gin.Context, id string) (*models.Department, error) {
		return c.hierarchy.GetDepartment(ctx, id)
	})
}

// GetFaculty godoc
// @Summary Get a faculty member
// @Tags hierarchy
// @Produce json
// @Security BearerAuth
// @Param id path string true "Faculty ID"
// @Success 200 {object} dto.StructuredResponse{data=models.Faculty}
// @Router /faculties/{id} [get]
func (c *HierarchyController) GetFaculty() gin.HandlerFunc {
	return get(c, models.KindFaculty, func(ctx *gin.Context, id string) (*models.Faculty, error) {
		return c.hierarchy.GetFaculty(ctx, id)
	})
}

// GetStudent godoc
// @Summary Get a student
// @Tags hierarchy
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} dto.StructuredResponse{data=models.Student}
// @Router /students/{id} [get]
func (c *HierarchyController) GetStudent() gin.HandlerFunc {
	return get(c, models.KindStudent, func(ctx *gin.Context, id string) (*models.Student, error) {
		return c.hierarchy.GetStudent(ctx, id)
	})
}

// ListInstitutes godoc
// @Summary List institutes
// @Tags hierarchy
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse}
// @Router /institutes [get]
func (c *HierarchyController) ListInstitutes(ctx *gin.Context) {
	institutes, err := c.hierarchy.ListInstitutes(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, institutes, "Institutes retrieved successfully")
}

// list returns a handler listing the children of the :id parent.
func list[T any](c *HierarchyController, parentKind models.EntityKind, load func(*gin.Context, string) ([]T, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, ok := mustClaims(ctx)
		if !ok {
			return
		}
		id := ctx.Param("id")
		if err := c.authz.RequireView(ctx, claims, models.Ref{Kind: parentKind, ID: id}); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		items, err := load(ctx, id)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		respondPage(ctx, items, "List retrieved successfully")
	}
}

// ListColleges godoc
// @Summary List the colleges of an institute
// @Tags hierarchy
// @Produce json
// @Security BearerAuth
// @Param id path string true "Institute ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse}
// @Router /institutes/{id}/colleges [get]
func (c *HierarchyController) ListColleges() gin.HandlerFunc {
	return list(c, models.KindInstitute, func(ctx *gin.Context, id string) ([]*models.College, error) {
		return c.hierarchy.ListColleges(ctx, id)
	})
}

// ListDepartments godoc
// @Summary List the departments of a college
// @Tags hierarchy
// @Produce json
// @Security BearerAuth
// @Param id path string true "College ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse}
// @Router /colleges/{id}/departments [get]
func (c *HierarchyController) ListDepartments() gin.HandlerFunc {
	return list(c, models.KindCollege, func(ctx *gin.Context, id string) ([]*models.Department, error) {
		return c.hierarchy.ListDepartments(ctx, id)
	})
}

// ListFaculties godoc
// @Summary List the faculty of a department
// @Tags hierarchy
// @Produce json
// @Security BearerAuth
// @Param id path string true "Department ID"
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse}
// @Router /departments/{id}/faculties [get]
func (c *HierarchyController) ListFaculties() gin.HandlerFunc {
	return list(c, models.KindDepartment, func(ctx *gin.Context, id string) ([]*models.Faculty, error) {
		return c.hierarchy.ListFaculties(ctx, id)
	})
}

// ListStudents godoc
// @Summary List the students of a department
// @Tags hierarchy
// @Produce json
// @Security BearerAuth
// @Param id path string true "Department ID"
// @Param coordinatorId query string false "Only students of this coordinator"
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse}
// @Router /departments/{id}/students [get]
func (c *HierarchyController) ListStudents() gin.HandlerFunc {
	return list(c, models.KindDepartment, func(ctx *gin.Context, id string) ([]*models.Student, error) {
		return c.hierarchy.ListStudents(ctx, id, ctx.Query("coordinatorId"))
	})
}

// resolveEdge fills in the edge implied by the parent and child kinds.
func resolveEdge(edge models.EdgeKind, parent, child models.Ref) models.EdgeKind {
	if edge != "" {
		return edge
	}
	if e, ok := models.EdgeBetween(parent.Kind, child.Kind); ok {
		return e
	}
	return edge
}

// AttachChild godoc
// @Summary Attach a child to a parent
// @Description Idempotent. Fails with RES_004 when the child already belongs to another parent.
// @Tags hierarchy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EdgeRequest true "Edge"
// @Success 200 {object} dto.SuccessResponse
// @Failure 409 {object} dto.ErrorResponse "Conflicting parent"
// @Router /hierarchy/attach [post]
func (c *HierarchyController) AttachChild(ctx *gin.Context) {
	claims, ok := mustClaims(ctx)
	if !ok {
		return
	}
	var req dto.EdgeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if err := c.authz.RequireManage(ctx, claims, req.Child); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if !c.authorizeParent(ctx, claims, req.Parent) {
		return
	}

	if err := c.hierarchy.AttachChild(ctx, req.Parent, req.Child, resolveEdge(req.Edge, req.Parent, req.Child)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.analytics.Invalidate(ctx, req.Parent, req.Child)
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Child attached"})
}

// DetachChild godoc
// @Summary Detach a child from a parent
// @Tags hierarchy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EdgeRequest true "Edge"
// @Success 200 {object} dto.SuccessResponse
// @Router /hierarchy/detach [post]
func (c *HierarchyController) DetachChild(ctx *gin.Context) {
	claims, ok := mustClaims(ctx)
	if !ok {
		return
	}
	var req dto.EdgeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if err := c.authz.RequireManage(ctx, claims, req.Parent); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.hierarchy.DetachChild(ctx, req.Parent, req.Child); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.analytics.Invalidate(ctx, req.Parent, req.Child)
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Child detached"})
}

// Reassign godoc
// @Summary Move a child to a new parent
// @Description Moves both membership sets and the child pointer atomically and re-derives dependent links.
// @Tags hierarchy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ReassignRequest true "Reassignment"
// @Success 200 {object} dto.SuccessResponse
// @Failure 409 {object} dto.ErrorResponse "oldParent is not the current parent"
// @Router /hierarchy/reassign [post]
func (c *HierarchyController) Reassign(ctx *gin.Context) {
	claims, ok := mustClaims(ctx)
	if !ok {
		return
	}
	var req dto.ReassignRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if err := c.authz.RequireManage(ctx, claims, req.Child); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if !c.authorizeParent(ctx, claims, req.NewParent) {
		return
	}

	edge := resolveEdge(req.Edge, req.NewParent, req.Child)
	touched, err := c.hierarchy.Reassign(ctx, req.Child, req.OldParent, req.NewParent, edge)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.analytics.Invalidate(ctx, touched...)
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Child reassigned"})
}

// AssignHOD godoc
// @Summary Assign the head of a department
// @Tags hierarchy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Department ID"
// @Param request body dto.AssignHODRequest true "Faculty"
// @Success 200 {object} dto.StructuredResponse{data=models.Department}
// @Failure 422 {object} dto.ErrorResponse "Faculty is not an active member of the department"
// @Router /departments/{id}/hod [put]
func (c *HierarchyController) AssignHOD(ctx *gin.Context) {
	claims, ok := mustClaims(ctx)
	if !ok {
		return
	}
	var req dto.AssignHODRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	id := ctx.Param("id")
	if err := c.authz.RequireManage(ctx, claims, models.Ref{Kind: models.KindDepartment, ID: id}); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	dept, err := c.hierarchy.AssignHOD(ctx, id, req.FacultyID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dept, "Head of department assigned")
}

// UpdateAcademics godoc
// @Summary Update a student's GPA and attendance
// @Tags hierarchy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param request body services.AcademicsInput true "Academics"
// @Success 200 {object} dto.StructuredResponse{data=models.Student}
// @Router /students/{id}/academics [patch]
func (c *HierarchyController) UpdateAcademics(ctx *gin.Context) {
	claims, ok := mustClaims(ctx)
	if !ok {
		return
	}
	var in services.AcademicsInput
	if !middleware.BindJSON(ctx, &in) {
		return
	}
	id := ctx.Param("id")
	if err := c.authz.RequireManage(ctx, claims, models.Ref{Kind: models.KindStudent, ID: id}); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	student, err := c.hierarchy.UpdateStudentAcademics(ctx, id, in)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.invalidateStudent(ctx, student)
	respondOK(ctx, student, "Academics updated")
}

// Deactivate godoc
// @Summary Soft-delete an entity
// @Description Marks the entity inactive and detaches it from its parents. Records are never removed.
// @Tags hierarchy
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entity ID"
// @Success 200 {object} dto.SuccessResponse
// @Router /{kind}/{id} [delete]
func (c *HierarchyController) Deactivate(kind models.EntityKind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, ok := mustClaims(ctx)
		if !ok {
			return
		}
		ref := models.Ref{Kind: kind, ID: ctx.Param("id")}
		if err := c.authz.RequireManage(ctx, claims, ref); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		// resolve before the entity goes inactive
		instituteID, _ := c.authz.InstituteOf(ctx, ref)

		if err := c.hierarchy.Deactivate(ctx, ref); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		c.analytics.Invalidate(ctx, ref, models.Ref{Kind: models.KindInstitute, ID: instituteID})
		ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: string(kind) + " deactivated"})
	}
}
