package services

import (
	"context"
	"errors"
	"fmt"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/fluentpath/roadmap_client/dto"
	"github.com/fluentpath/roadmap_client/model"
	"github.com/fluentpath/roadmap_client/shared"
)

// EnrollmentService resolves whether the learner holds an enrollment for
// a roadmap and drives the resume-vs-restart protocol when switching
// learning paths.
type EnrollmentService struct {
	appContext.DefaultService

	api UpstreamClient
}

const ENROLLMENT_SVC = "enrollment_svc"

func (svc EnrollmentService) Id() string {
	return ENROLLMENT_SVC
}

func (svc *EnrollmentService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *EnrollmentService) Start() error {
	svc.api = svc.Service(API_SVC).(*ApiService)
	return nil
}

// CheckEnrollment queries the primary enrollment route and falls back to
// the legacy route only when the primary answers route-not-found. Any
// other failure propagates untouched.
func (svc *EnrollmentService) CheckEnrollment(ctx context.Context, userID, roadmapID string) (*model.EnrollmentCheck, error) {
	check, err := svc.api.GetEnrollment(ctx, userID, roadmapID)
	if err == nil {
		return check, nil
	}
	if !errors.Is(err, shared.ErrRouteNotFound) {
		return nil, err
	}

	log.WithField("roadmap_id", roadmapID).Debug("Enrollment route missing, trying legacy endpoint")
	return svc.api.GetEnrollmentLegacy(ctx, userID, roadmapID)
}

func (svc *EnrollmentService) SelectRoadmap(ctx context.Context, userID, roadmapID string, restart bool) error {
	return svc.api.SelectRoadmap(ctx, userID, roadmapID, restart)
}

// Bootstrap resolves what the roadmap page may show. An unauthenticated
// learner, or any unrecoverable fetch failure, degrades to preview mode:
// roadmap metadata only, no server-backed progress, with a transient
// notice for the failure case.
func (svc *EnrollmentService) Bootstrap(ctx context.Context, userID, roadmapID string) (*dto.RoadmapBootstrapResponse, error) {
	roadmap, err := svc.api.GetRoadmap(ctx, roadmapID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Roadmap not found")
	}

	resp := &dto.RoadmapBootstrapResponse{
		Roadmap: dto.RoadmapResponse{
			ID:       roadmap.ID,
			Name:     roadmap.Name,
			Level:    roadmap.Level,
			Overview: roadmap.Overview,
		},
	}

	if userID == "" {
		resp.PreviewMode = true
		return resp, nil
	}

	check, err := svc.CheckEnrollment(ctx, userID, roadmapID)
	if err != nil {
		log.WithError(err).WithField("roadmap_id", roadmapID).Warn("Enrollment check failed, degrading to preview mode")
		resp.PreviewMode = true
		resp.Notice = "Progress is temporarily unavailable"
		return resp, nil
	}

	resp.Enrolled = check.Enrolled
	if check.Enrollment != nil {
		resp.EnrollmentStatus = check.Enrollment.Status
		resp.ProgressSummary = summaryResponse(check.Enrollment.ProgressSummary)
	}

	return resp, nil
}

// TrySwitch runs the path-switch protocol for a candidate roadmap:
//
//  1. candidate equals the currently shown active roadmap: no-op
//  2. no enrollment: enroll fresh, navigate
//  3. enrollment already active: navigate, nothing to decide
//  4. inactive with prior progress: surface the continue-vs-restart
//     choice and stop until the learner answers
//  5. inactive without progress: reactivate, navigate
//
// Branch 4 must never be skipped; auto-resuming silently discards the
// learner's choice.
func (svc *EnrollmentService) TrySwitch(ctx context.Context, userID, candidateID, currentID string) (*dto.SwitchOutcome, error) {
	if candidateID == currentID {
		return &dto.SwitchOutcome{Action: shared.SwitchNoop}, nil
	}

	check, err := svc.CheckEnrollment(ctx, userID, candidateID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to check enrollment")
	}

	if !check.Enrolled || check.Enrollment == nil {
		return svc.activateAndNavigate(ctx, userID, candidateID, false)
	}

	enrollment := check.Enrollment
	if enrollment.Status == shared.EnrollmentActive {
		return navigateOutcome(candidateID), nil
	}

	if enrollment.ProgressSummary != nil && enrollment.ProgressSummary.HasProgress {
		return &dto.SwitchOutcome{
			Action:          shared.SwitchDecisionRequired,
			ProgressSummary: summaryResponse(enrollment.ProgressSummary),
		}, nil
	}

	return svc.activateAndNavigate(ctx, userID, candidateID, false)
}

// ConfirmSwitch completes a decision_required switch with the learner's
// choice: restart=false resumes, restart=true starts over from day 1.
func (svc *EnrollmentService) ConfirmSwitch(ctx context.Context, userID, roadmapID string, restart bool) (*dto.SwitchOutcome, error) {
	return svc.activateAndNavigate(ctx, userID, roadmapID, restart)
}

func (svc *EnrollmentService) activateAndNavigate(ctx context.Context, userID, roadmapID string, restart bool) (*dto.SwitchOutcome, error) {
	if err := svc.api.SelectRoadmap(ctx, userID, roadmapID, restart); err != nil {
		return nil, shared.NewInternalError(err, "Failed to select roadmap")
	}
	return navigateOutcome(roadmapID), nil
}

func navigateOutcome(roadmapID string) *dto.SwitchOutcome {
	return &dto.SwitchOutcome{
		Action:     shared.SwitchNavigate,
		RedirectTo: fmt.Sprintf("/roadmaps/%s/days", roadmapID),
	}
}

func summaryResponse(summary *model.ProgressSummary) *dto.ProgressSummaryResponse {
	if summary == nil {
		return nil
	}
	return &dto.ProgressSummaryResponse{
		HasProgress:      summary.HasProgress,
		LastCompletedDay: summary.LastCompletedDay,
	}
}
