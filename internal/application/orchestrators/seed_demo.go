package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"traindesk/internal/domain/course"
	"traindesk/internal/domain/enrollment"
	"traindesk/internal/domain/student"

	"github.com/google/uuid"
)

// SeedDemoDeps holds dependencies for SeedDemo.
type SeedDemoDeps struct {
	CourseStore     CourseStore
	StudentStore    StudentStore
	MentorStore     MentorStore
	EnrollmentStore EnrollmentStore
}

// ExecuteSeedDemo loads a small demo data set for development: students,
// mentors, one course per lifecycle bucket (the planning one with a staged
// draft) and enrollments in several approval states. A non-empty course
// table makes this a no-op so restarts do not duplicate data.
func ExecuteSeedDemo(ctx context.Context, deps SeedDemoDeps) error {
	existing, err := deps.CourseStore.ListByName(ctx, "Go for Backend Engineers")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	genID := func() string { return uuid.New().String() }
	now := time.Now
	classes := func(n int) *int { return &n }

	students := []CreateStudentInput{
		{EmployeeID: "EMP-1001", Name: "Nusrat Jahan", Email: "nusrat.jahan@corp.example", SBU: student.SBUIT, Designation: "Software Engineer", ExperienceYears: 3},
		{EmployeeID: "EMP-1002", Name: "Rafiul Islam", Email: "rafiul.islam@corp.example", SBU: student.SBUFinance, Designation: "Analyst", ExperienceYears: 5},
		{EmployeeID: "EMP-1003", Name: "Sadia Karim", Email: "sadia.karim@corp.example", SBU: student.SBUHR, Designation: "HR Officer", ExperienceYears: 2},
		{EmployeeID: "EMP-1004", Name: "Tanvir Hossain", Email: "tanvir.hossain@corp.example", SBU: student.SBUOperations, Designation: "Team Lead", ExperienceYears: 8},
	}
	studentIDs := make([]string, 0, len(students))
	for _, in := range students {
		s, err := ExecuteCreateStudent(ctx, in, CreateStudentDeps{StudentStore: deps.StudentStore, GenerateID: genID})
		if err != nil {
			return fmt.Errorf("seed student %s: %w", in.EmployeeID, err)
		}
		studentIDs = append(studentIDs, s.ID)
	}

	internalMentor, err := ExecuteCreateMentor(ctx, CreateMentorInput{
		Name: "Tanvir Hossain", Email: "tanvir.hossain@corp.example",
		IsInternal: true, StudentID: studentIDs[3], SBU: student.SBUOperations, Designation: "Team Lead",
	}, CreateMentorDeps{MentorStore: deps.MentorStore, StudentStore: deps.StudentStore, GenerateID: genID})
	if err != nil {
		return fmt.Errorf("seed internal mentor: %w", err)
	}
	externalMentor, err := ExecuteCreateMentor(ctx, CreateMentorInput{
		Name: "Dr. Ayesha Siddiqua", Email: "ayesha@trainerpool.example", Designation: "Consultant",
	}, CreateMentorDeps{MentorStore: deps.MentorStore, StudentStore: deps.StudentStore, GenerateID: genID})
	if err != nil {
		return fmt.Errorf("seed external mentor: %w", err)
	}

	courseDeps := CreateCourseDeps{CourseStore: deps.CourseStore, GenerateID: genID, Now: now}
	today := time.Now().UTC().Truncate(24 * time.Hour)

	completed, err := ExecuteCreateCourse(ctx, CreateCourseInput{
		Name: "Effective Business Writing", BatchCode: "EBW-01",
		Description: "Two-week workshop on **clear writing** for client-facing teams.",
		StartDate:   today.AddDate(0, -3, 0), EndDate: today.AddDate(0, -2, -14),
		SeatLimit: 15, TotalClassesOffered: classes(6), FoodCost: 120, OtherCost: 30,
	}, courseDeps)
	if err != nil {
		return fmt.Errorf("seed completed course: %w", err)
	}
	ongoing, err := ExecuteCreateCourse(ctx, CreateCourseInput{
		Name: "Go for Backend Engineers", BatchCode: "GO-02",
		Description: "Hands-on Go course covering services, SQL and testing.",
		StartDate:   today.AddDate(0, 0, -7), EndDate: today.AddDate(0, 1, 0),
		SeatLimit: 2, TotalClassesOffered: classes(10), FoodCost: 200, OtherCost: 80,
	}, courseDeps)
	if err != nil {
		return fmt.Errorf("seed ongoing course: %w", err)
	}
	planning, err := ExecuteCreateCourse(ctx, CreateCourseInput{
		Name: "Data Literacy Fundamentals", BatchCode: "DLF-01",
		Status:    course.StatusDraft,
		StartDate: today.AddDate(0, 1, 0), EndDate: today.AddDate(0, 2, 0),
		SeatLimit: 25, TotalClassesOffered: classes(8),
	}, courseDeps)
	if err != nil {
		return fmt.Errorf("seed planning course: %w", err)
	}

	// Official assignments on the running courses, staged one on the draft.
	assignDeps := AssignMentorDeps{CourseStore: deps.CourseStore, MentorStore: deps.MentorStore, GenerateID: genID, Now: now}
	if _, err := ExecuteAssignMentor(ctx, AssignMentorInput{CourseID: completed.ID, MentorID: externalMentor.ID, HoursTaught: 12, AmountPaid: 600}, assignDeps); err != nil {
		return fmt.Errorf("seed completed assignment: %w", err)
	}
	if _, err := ExecuteAssignMentor(ctx, AssignMentorInput{CourseID: ongoing.ID, MentorID: internalMentor.ID, HoursTaught: 20, AmountPaid: 1000}, assignDeps); err != nil {
		return fmt.Errorf("seed ongoing assignment: %w", err)
	}
	stagedFood := 150.0
	if _, err := ExecuteSaveDraft(ctx, SaveDraftInput{
		CourseID: planning.ID,
		MentorAssignments: []course.DraftAssignment{
			{MentorID: externalMentor.ID, HoursTaught: 16, AmountPaid: 800},
		},
		FoodCost: &stagedFood,
	}, SaveDraftDeps{CourseStore: deps.CourseStore, Now: now}); err != nil {
		return fmt.Errorf("seed draft: %w", err)
	}

	enrollDeps := CreateEnrollmentDeps{
		EnrollmentStore: deps.EnrollmentStore,
		CourseStore:     deps.CourseStore,
		StudentStore:    deps.StudentStore,
		GenerateID:      genID,
		Now:             now,
	}
	decideDeps := DecideEnrollmentDeps{EnrollmentStore: deps.EnrollmentStore, Now: now}

	approved, err := ExecuteCreateEnrollment(ctx, CreateEnrollmentInput{
		StudentID: studentIDs[0], CourseID: ongoing.ID, EligibilityStatus: enrollment.EligibilityEligible,
	}, enrollDeps)
	if err != nil {
		return fmt.Errorf("seed enrollment: %w", err)
	}
	if err := ExecuteDecideEnrollment(ctx, DecideEnrollmentInput{
		EnrollmentID: approved.ID, Decision: DecisionApprove, DecidedBy: "seed",
	}, decideDeps); err != nil {
		return fmt.Errorf("seed approval: %w", err)
	}

	if _, err := ExecuteCreateEnrollment(ctx, CreateEnrollmentInput{
		StudentID: studentIDs[1], CourseID: ongoing.ID, EligibilityStatus: enrollment.EligibilityEligible,
	}, enrollDeps); err != nil {
		return fmt.Errorf("seed pending enrollment: %w", err)
	}
	if _, err := ExecuteCreateEnrollment(ctx, CreateEnrollmentInput{
		StudentID: studentIDs[2], CourseID: ongoing.ID,
		EligibilityStatus: enrollment.EligibilityAnnualLimit,
		EligibilityReason: "Already attended 3 trainings this year",
	}, enrollDeps); err != nil {
		return fmt.Errorf("seed ineligible enrollment: %w", err)
	}

	slog.Info("seed_event", "event", "demo_data_seeded", "students", len(studentIDs), "courses", 3)
	return nil
}
