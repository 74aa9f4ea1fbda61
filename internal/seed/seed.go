package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	appModels "github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
	appServices "github.com/vicky2929-er/student-smart-hub-sub002/internal/app/services"
)

// Services are the writers demo data goes through, so seeded records obey
// the same invariants as API writes.
type Services struct {
	Requests     *appServices.InstituteRequestService
	Hierarchy    *appServices.HierarchyService
	Achievements *appServices.AchievementService
}

type demoDepartment struct {
	name, code string
	faculty    appServices.CreateFacultyInput
	students   []appServices.CreateStudentInput
}

var demoDepartments = []demoDepartment{
	{
		name: "Computer Science and Engineering", code: "CSE",
		faculty: appServices.CreateFacultyInput{
			FirstName: "Anita", LastName: "Rao", FacultyCode: "FCSE01",
			Email: "anita.rao@demo.edu", Designation: "Associate Professor", IsCoordinator: true,
		},
		students: []appServices.CreateStudentInput{
			{FirstName: "Rahul", LastName: "Verma", StudentCode: "CSE2201", Email: "rahul.verma@demo.edu", EnrollmentYear: 2022, Batch: "2022-26", GPA: float(8.4), Attendance: float(91)},
			{FirstName: "Sneha", LastName: "Iyer", StudentCode: "CSE2202", Email: "sneha.iyer@demo.edu", EnrollmentYear: 2022, Batch: "2022-26", GPA: float(9.1), Attendance: float(96)},
			{FirstName: "Arjun", LastName: "Mehta", StudentCode: "CSE2203", Email: "arjun.mehta@demo.edu", EnrollmentYear: 2022, Batch: "2022-26", GPA: float(7.2), Attendance: float(78)},
		},
	},
	{
		name: "Electronics and Communication", code: "ECE",
		faculty: appServices.CreateFacultyInput{
			FirstName: "Vikram", LastName: "Nair", FacultyCode: "FECE01",
			Email: "vikram.nair@demo.edu", Designation: "Assistant Professor", IsCoordinator: true,
		},
		students: []appServices.CreateStudentInput{
			{FirstName: "Priya", LastName: "Das", StudentCode: "ECE2301", Email: "priya.das@demo.edu", EnrollmentYear: 2023, Batch: "2023-27", GPA: float(8.8), Attendance: float(88)},
			{FirstName: "Karan", LastName: "Singh", StudentCode: "ECE2302", Email: "karan.singh@demo.edu", EnrollmentYear: 2023, Batch: "2023-27", GPA: float(6.9), Attendance: float(72)},
		},
	},
}

var demoAchievements = []appServices.AchievementInput{
	{Title: "Smart India Hackathon Finalist", Category: appModels.CategoryHackathon, Organization: "Ministry of Education"},
	{Title: "Cloud Computing Workshop", Category: appModels.CategoryWorkshop, Organization: "AWS Academy"},
	{Title: "Machine Learning Specialization", Category: appModels.CategoryCourse, Organization: "Coursera"},
	{Title: "NSS Blood Donation Camp", Category: appModels.CategoryVolunteering, Organization: "National Service Scheme"},
}

func float(v float64) *float64 { return &v }

// CreateDemoData creates one approved institute with a college, two
// departments, their coordinators, students and reviewed achievements. It
// does nothing when any institute already exists.
func CreateDemoData(ctx context.Context, svc Services, lgr zerolog.Logger) error {
	existing, err := svc.Hierarchy.ListInstitutes(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing institutes: %w", err)
	}
	if len(existing) > 0 {
		lgr.Info().Int("institutes", len(existing)).Msg("Demo data skipped, institutes already exist")
		return nil
	}

	lgr.Info().Msg("Creating demo data...")

	req, err := svc.Requests.Submit(ctx, appServices.InstituteRequestInput{
		Name:      "Demo Institute of Technology",
		AisheCode: "C-12345",
		Type:      "Engineering",
		Email:     "admin@demo.edu",
		State:     "Karnataka",
		District:  "Bengaluru Urban",
		HeadName:  "Dr. Meera Kulkarni",
	})
	if err != nil {
		return fmt.Errorf("failed to submit demo institute request: %w", err)
	}
	institute, err := svc.Requests.Approve(ctx, req.ID, "Demo data")
	if err != nil {
		return fmt.Errorf("failed to approve demo institute: %w", err)
	}

	college, err := svc.Hierarchy.CreateCollege(ctx, appServices.CreateCollegeInput{
		InstituteID: institute.ID,
		Name:        "College of Engineering",
		Code:        "COE",
	})
	if err != nil {
		return fmt.Errorf("failed to create demo college: %w", err)
	}

	var finalErr error
	for _, d := range demoDepartments {
		if err := createDepartment(ctx, svc, college.ID, d); err != nil {
			lgr.Error().Err(err).Str("department", d.code).Msg("Error creating demo department")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().Str("instituteID", institute.ID).Str("code", institute.Code).Msg("Demo data created")
	return finalErr
}

func createDepartment(ctx context.Context, svc Services, collegeID string, d demoDepartment) error {
	dept, err := svc.Hierarchy.CreateDepartment(ctx, appServices.CreateDepartmentInput{
		CollegeID: collegeID,
		Name:      d.name,
		Code:      d.code,
	})
	if err != nil {
		return err
	}

	fin := d.faculty
	fin.DepartmentID = dept.ID
	coordinator, err := svc.Hierarchy.CreateFaculty(ctx, fin)
	if err != nil {
		return err
	}
	if _, err := svc.Hierarchy.AssignHOD(ctx, dept.ID, coordinator.ID); err != nil {
		return err
	}

	var finalErr error
	for i, sin := range d.students {
		sin.DepartmentID = dept.ID
		sin.CoordinatorID = coordinator.ID
		student, err := svc.Hierarchy.CreateStudent(ctx, sin)
		if err != nil {
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if err := createAchievements(ctx, svc, student.ID, coordinator.ID, i); err != nil {
			finalErr = errors.Join(finalErr, err)
		}
	}
	return finalErr
}

// createAchievements submits a rotating slice of the demo achievements and
// reviews all but the last one, leaving something in the pending queue.
func createAchievements(ctx context.Context, svc Services, studentID, reviewerID string, offset int) error {
	count := 2 + offset%3
	for i := 0; i < count; i++ {
		in := demoAchievements[(offset+i)%len(demoAchievements)]
		completed := time.Now().AddDate(0, -i, -7)
		in.DateCompleted = &completed

		a, err := svc.Achievements.Submit(ctx, studentID, in, nil)
		if err != nil {
			return err
		}
		if i == count-1 {
			continue
		}

		decision, comment := appModels.AchievementApproved, "Verified"
		if (offset+i)%4 == 3 {
			decision, comment = appModels.AchievementRejected, "Certificate missing"
		}
		if _, err := svc.Achievements.Review(ctx, appServices.ReviewInput{
			FacultyID:     reviewerID,
			StudentID:     studentID,
			AchievementID: a.ID,
			Decision:      decision,
			Comment:       comment,
		}); err != nil {
			return err
		}
	}
	return nil
}
