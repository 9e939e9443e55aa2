package projections

import (
	"context"
	"strings"
	"testing"

	"traindesk/internal/domain/course"
	"traindesk/internal/domain/mentor"
)

func detailFixture() (*mockCourseStore, *mockMentorStore) {
	food := 150.0
	classes := 10
	courses := &mockCourseStore{courses: []course.Course{
		{
			ID: "official", Name: "Go for Backend Engineers", BatchCode: "GO-02",
			Description: "Covers **services** and SQL.",
			StartDate:   fixedTime.AddDate(0, 0, -7), EndDate: fixedTime.AddDate(0, 1, 0),
			SeatLimit: 20, CurrentEnrolled: 2, TotalClassesOffered: &classes,
			FoodCost: 200, OtherCost: 80,
			Mentors: []course.MentorAssignment{
				{ID: "a1", MentorID: "m1", HoursTaught: 20, AmountPaid: 1000},
			},
		},
		{
			ID: "staged", Name: "Data Literacy Fundamentals", BatchCode: "DLF-01",
			Status:    course.StatusDraft,
			StartDate: fixedTime.AddDate(0, 1, 0),
			SeatLimit: 25, FoodCost: 50,
			Mentors: []course.MentorAssignment{
				{ID: "a2", MentorID: "m1", HoursTaught: 5, AmountPaid: 250},
			},
			Draft: &course.Draft{
				MentorAssignments: []course.DraftAssignment{
					{MentorID: "m2", HoursTaught: 16, AmountPaid: 800},
				},
				FoodCost: &food,
			},
		},
	}}
	mentors := &mockMentorStore{mentors: map[string]mentor.Mentor{
		"m1": {ID: "m1", Name: "Tanvir Hossain", IsInternal: true, StudentID: "s1", Email: "tanvir@corp.example"},
		"m2": {ID: "m2", Name: "Dr. Ayesha Siddiqua", Email: "ayesha@trainerpool.example"},
	}}
	return courses, mentors
}

// TestQueryCourseDetail_Official verifies mentor resolution, markdown
// rendering and official cost math.
func TestQueryCourseDetail_Official(t *testing.T) {
	courses, mentors := detailFixture()
	deps := GetCourseDetailDeps{CourseStore: courses, MentorStore: mentors, Now: fixedNow}

	result, err := QueryCourseDetail(context.Background(), "official", deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Bucket != course.BucketOngoing {
		t.Errorf("bucket = %s, want ongoing", result.Bucket)
	}
	if len(result.Mentors) != 1 || result.Mentors[0].MentorName != "Tanvir Hossain" || !result.Mentors[0].IsInternal {
		t.Errorf("mentors = %+v", result.Mentors)
	}
	if result.Mentors[0].Staged {
		t.Error("official assignment must not be marked staged")
	}
	if !strings.Contains(result.DescriptionHTML, "<strong>services</strong>") {
		t.Errorf("description html = %q, want rendered markdown", result.DescriptionHTML)
	}
	if result.TotalMentorCost != 1000 {
		t.Errorf("mentor cost = %v, want 1000", result.TotalMentorCost)
	}
	if result.TotalTrainingCost != 1280 {
		t.Errorf("total cost = %v, want 1280", result.TotalTrainingCost)
	}
	if result.Draft != nil {
		t.Error("official course must not carry a draft view")
	}
	if result.TotalClassesOffered == nil || *result.TotalClassesOffered != 10 {
		t.Errorf("class count = %v, want 10", result.TotalClassesOffered)
	}
}

// TestQueryCourseDetail_Staged verifies draft assignments supersede official
// ones in the cost math and both are visible.
func TestQueryCourseDetail_Staged(t *testing.T) {
	courses, mentors := detailFixture()
	deps := GetCourseDetailDeps{CourseStore: courses, MentorStore: mentors, Now: fixedNow}

	result, err := QueryCourseDetail(context.Background(), "staged", deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Bucket != course.BucketPlanning {
		t.Errorf("bucket = %s, want planning", result.Bucket)
	}
	if result.Draft == nil {
		t.Fatal("expected draft view")
	}
	if len(result.Draft.MentorAssignments) != 1 || result.Draft.MentorAssignments[0].MentorName != "Dr. Ayesha Siddiqua" {
		t.Errorf("draft mentors = %+v", result.Draft.MentorAssignments)
	}
	if !result.Draft.MentorAssignments[0].Staged {
		t.Error("draft assignment must be marked staged")
	}
	// Staged assignments supersede officials; staged food cost overrides.
	if result.TotalMentorCost != 800 {
		t.Errorf("mentor cost = %v, want staged 800", result.TotalMentorCost)
	}
	if result.FoodCost != 150 {
		t.Errorf("food cost = %v, want staged 150", result.FoodCost)
	}
	if result.TotalTrainingCost != 950 {
		t.Errorf("total cost = %v, want 950", result.TotalTrainingCost)
	}
	// The official assignment stays visible alongside the staged one.
	if len(result.Mentors) != 1 || result.Mentors[0].AmountPaid != 250 {
		t.Errorf("official mentors = %+v", result.Mentors)
	}
	// No class count published yet; the view must not invent a zero.
	if result.TotalClassesOffered != nil {
		t.Errorf("class count = %v, want nil", *result.TotalClassesOffered)
	}
}

// TestQueryCourseDetail_NotFound verifies the sentinel error passes through.
func TestQueryCourseDetail_NotFound(t *testing.T) {
	courses, mentors := detailFixture()
	deps := GetCourseDetailDeps{CourseStore: courses, MentorStore: mentors, Now: fixedNow}

	if _, err := QueryCourseDetail(context.Background(), "ghost", deps); err != course.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
