package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/code-journal/internal/domain"
	"github.com/msomdec/code-journal/internal/service"
)

func newTestProjectService(t *testing.T) *service.ProjectService {
	t.Helper()
	repo := newTestRepo(t)
	if err := repo.Create(context.Background(), freshUser(t)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return service.NewProjectService(repo)
}

func TestProjectService_Save(t *testing.T) {
	projects := newTestProjectService(t)
	ctx := context.Background()

	in := service.ProjectInput{
		Name: "landing page",
		HTML: "<h1>Hi</h1>\n\n<p>There</p>\n",
		CSS:  "h1 { color: red; }\n",
		JS:   "console.log('hi');\nconsole.log('there');\n",
	}
	user, project, err := projects.Save(ctx, "u1", in)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Blank lines do not count.
	if project.Statistics.HTMLLines != 2 {
		t.Fatalf("expected 2 HTML lines, got %d", project.Statistics.HTMLLines)
	}
	if project.Statistics.CSSLines != 1 || project.Statistics.JSLines != 2 {
		t.Fatalf("unexpected line counts: %+v", project.Statistics)
	}
	if project.Statistics.TotalLines != 5 {
		t.Fatalf("expected 5 total lines, got %d", project.Statistics.TotalLines)
	}

	if user.Statistics.TotalProjects != 1 {
		t.Fatalf("expected totalProjects 1, got %d", user.Statistics.TotalProjects)
	}
	if !user.HasAchievement("first_project") {
		t.Fatal("expected first_project achievement")
	}
	if len(user.Projects) != 1 || user.Projects[0].ID != project.ID {
		t.Fatalf("expected project at head of list, got %+v", user.Projects)
	}
}

func TestProjectService_SaveRequiresName(t *testing.T) {
	projects := newTestProjectService(t)

	_, _, err := projects.Save(context.Background(), "u1", service.ProjectInput{Name: "   "})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProjectService_ResaveCreatesNewRecord(t *testing.T) {
	projects := newTestProjectService(t)
	ctx := context.Background()

	_, first, err := projects.Save(ctx, "u1", service.ProjectInput{Name: "demo", JS: "a()\n"})
	if err != nil {
		t.Fatalf("first Save: %v", err)
	}
	user, second, err := projects.Save(ctx, "u1", service.ProjectInput{Name: "demo", JS: "a()\nb()\n"})
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}

	if first.ID == second.ID {
		t.Fatal("expected a new id for the re-save")
	}
	if len(user.Projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(user.Projects))
	}
	// Most recent first.
	if user.Projects[0].ID != second.ID {
		t.Fatalf("expected newest project at head, got %s", user.Projects[0].ID)
	}
	if user.Statistics.TotalProjects != 2 {
		t.Fatalf("expected totalProjects 2, got %d", user.Statistics.TotalProjects)
	}
}

func TestProjectService_List(t *testing.T) {
	projects := newTestProjectService(t)
	ctx := context.Background()

	for _, name := range []string{"one", "two", "three"} {
		if _, _, err := projects.Save(ctx, "u1", service.ProjectInput{Name: name}); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
	}

	list, err := projects.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(list))
	}
	if list[0].Name != "three" || list[2].Name != "one" {
		t.Fatalf("expected most-recent-first order, got %s..%s", list[0].Name, list[2].Name)
	}
}
