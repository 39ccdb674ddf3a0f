package httpapi

import (
	"errors"

	formsapp "github.com/Apurer/adoptionos/internal/domains/forms/application"
	formsdomain "github.com/Apurer/adoptionos/internal/domains/forms/domain"
	petsapp "github.com/Apurer/adoptionos/internal/domains/pets/application"
	sessionapp "github.com/Apurer/adoptionos/internal/domains/session/application"
	uidomain "github.com/Apurer/adoptionos/internal/domains/ui/domain"
	"github.com/Apurer/adoptionos/internal/portal"
	apierrors "github.com/Apurer/adoptionos/internal/shared/errors"
)

var (
	errNotSignedIn = errors.New("sign in to use the admin area")
	errBadBody     = errors.New("request body is not valid JSON for this endpoint")
)

func newResponder() *apierrors.Responder {
	return apierrors.NewResponder(mapWizardError, mapPetError, mapSessionError, mapPortalError)
}

func mapWizardError(err error) (apierrors.ProblemDetail, bool) {
	var verr *formsdomain.ValidationError
	if errors.As(err, &verr) {
		return apierrors.NewIncompleteProblem(verr.Labels).WithDetail(verr.Error()), true
	}
	var subErr *formsdomain.SubmissionError
	if errors.As(err, &subErr) {
		return apierrors.ErrUpstream.WithDetail(subErr.Message).WithExtension("upstreamStatus", subErr.Status), true
	}
	switch {
	case errors.Is(err, formsdomain.ErrFinalStep),
		errors.Is(err, formsdomain.ErrNotFinalStep),
		errors.Is(err, formsdomain.ErrSubmitInFlight):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, formsdomain.ErrInvalidPatch):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, formsapp.ErrUnknownForm):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapPetError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, petsapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, petsapp.ErrFetchFailed), errors.Is(err, petsapp.ErrUpdateFailed):
		return apierrors.ErrUpstream.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapSessionError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, sessionapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, sessionapp.ErrAuthentication), errors.Is(err, errNotSignedIn):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapPortalError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, errBadBody), errors.Is(err, uidomain.ErrEmptyView):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, portal.ErrMissingIdentifiers):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
