package planner

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"redmine-planner.com/redmine-planner/internal/cache"
	"redmine-planner.com/redmine-planner/internal/templates"
	"redmine-planner.com/redmine-planner/pkg/constants"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

const (
	issueCacheTTL = time.Hour
	lookupTimeout = 15 * time.Second
)

// ResolveName picks the task name: comments, then profile name, then issue
// subject, then a fixed fallback. Blank values are skipped.
func ResolveName(comments, profileName, issueSubject string) string {
	for _, candidate := range []string{comments, profileName, issueSubject} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return constants.FallbackTaskName
}

// Templates returns saved profiles followed by task history, fetched together.
func (p *Planner) Templates(ctx context.Context) ([]templates.Source, error) {
	var (
		profiles []model.Profile
		history  []model.HistoryEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = p.backend.ListProfiles(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = p.backend.ListHistory(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return templates.Merge(profiles, history), nil
}

// ApplyTemplate copies the template into a new draft; neither input is
// changed. Missing issue or project names trigger a background lookup of the
// project's issues that never blocks and never fails the caller.
func (p *Planner) ApplyTemplate(draft Draft, src templates.Source) Draft {
	out := draft
	out.ProfileName = src.Name
	out.ProjectID = src.ProjectID
	out.IssueID = src.IssueID
	out.ActivityID = src.ActivityID
	out.RDFunctionTeam = src.RDFunctionTeam
	out.Comments = src.Comments
	out.ProjectName = src.ProjectName
	out.IssueName = src.IssueName
	out.IssueSubject = ""

	if out.IssueName == "" && out.IssueID > 0 {
		out.IssueSubject = p.IssueSubject(out.ProjectID, out.IssueID)
	}
	if (src.IssueName == "" || src.ProjectName == "") && src.ProjectID > 0 {
		p.prefetchIssues(src.ProjectID)
	}
	return out
}

// IssueSubject looks the issue up in the cached list of its project. It
// never calls the backend.
func (p *Planner) IssueSubject(projectID, issueID int) string {
	if projectID <= 0 || issueID <= 0 {
		return ""
	}

	var issues []model.Issue
	found, err := p.issues.Get(context.Background(), cache.IssuesKey(projectID), &issues)
	if err != nil || !found {
		return ""
	}
	for _, i := range issues {
		if i.ID == issueID {
			return i.Subject
		}
	}
	return ""
}

// WaitLookups blocks until background issue lookups are done.
func (p *Planner) WaitLookups() {
	p.lookups.Wait()
}

func (p *Planner) prefetchIssues(projectID int) {
	var cached []model.Issue
	if found, _ := p.issues.Get(context.Background(), cache.IssuesKey(projectID), &cached); found {
		return
	}

	p.lookups.Add(1)
	go func() {
		defer p.lookups.Done()

		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()

		fields := log.Fields{"project_id": projectID}
		issues, err := p.backend.ListIssues(ctx, projectID)
		if err != nil {
			log.WithFields(fields).WithError(err).Warn("issue lookup failed")
			return
		}
		if err := p.issues.Set(ctx, cache.IssuesKey(projectID), issues, issueCacheTTL); err != nil {
			log.WithFields(fields).WithError(err).Warn("failed to cache issues")
		}
	}()
}
