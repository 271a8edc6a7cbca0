package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/msomdec/code-journal/internal/domain"
)

// ProjectSaveXP is awarded for every saved project.
const ProjectSaveXP = 25

// ProjectService handles saving and listing projects.
type ProjectService struct {
	users domain.UserRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(users domain.UserRepository) *ProjectService {
	return &ProjectService{users: users}
}

// ProjectInput is the payload for saving a project.
type ProjectInput struct {
	Name        string
	HTML        string
	CSS         string
	JS          string
	Description string
	Tags        []string
	SessionID   string
}

// Save stores a new project at the head of the user's project list, updates
// line statistics, awards the save XP, and evaluates project milestones.
//
// Saving is always a create: re-saving an edited project produces a new
// record with a new id rather than updating the old one.
func (s *ProjectService) Save(ctx context.Context, userID string, in ProjectInput) (*domain.User, *domain.Project, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, nil, fmt.Errorf("%w: project name is required", domain.ErrInvalidInput)
	}

	var project domain.Project
	user, err := s.users.Update(ctx, userID, func(u *domain.User) error {
		now := time.Now().UTC()

		project = domain.Project{
			ID:           uuid.NewString(),
			Name:         in.Name,
			HTML:         in.HTML,
			CSS:          in.CSS,
			JS:           in.JS,
			Description:  in.Description,
			Tags:         in.Tags,
			CreatedAt:    now,
			LastModified: now,
			SessionID:    in.SessionID,
			Statistics: domain.ProjectStatistics{
				HTMLLines: countLines(in.HTML),
				CSSLines:  countLines(in.CSS),
				JSLines:   countLines(in.JS),
			},
		}
		project.Statistics.TotalLines = project.Statistics.HTMLLines +
			project.Statistics.CSSLines +
			project.Statistics.JSLines

		// Most recent first.
		u.Projects = append([]domain.Project{project}, u.Projects...)
		u.Statistics.TotalProjects++
		u.Statistics.HTMLLines += project.Statistics.HTMLLines
		u.Statistics.CSSLines += project.Statistics.CSSLines
		u.Statistics.JSLines += project.Statistics.JSLines
		u.Statistics.TotalLines += project.Statistics.TotalLines

		if _, err := AwardXP(u, ProjectSaveXP, fmt.Sprintf("Project %q saved", in.Name), in.SessionID, now); err != nil {
			return err
		}

		EvaluateAchievements(u, now)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return user, &project, nil
}

// List returns the user's projects, most recent first.
func (s *ProjectService) List(ctx context.Context, userID string) ([]domain.Project, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Projects, nil
}

// countLines counts non-blank lines in a source blob.
func countLines(src string) int {
	if src == "" {
		return 0
	}
	n := 0
	for _, line := range strings.Split(src, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
