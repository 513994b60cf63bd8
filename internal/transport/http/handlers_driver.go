package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"haulpass/internal/domain"
	"haulpass/internal/verifier"
	id "haulpass/pkg/domain"
	dErrors "haulpass/pkg/domain-errors"
	"haulpass/pkg/platform/httputil"
	"haulpass/pkg/requestcontext"
)

// Demo subject claims issued on the driver's credential. A production
// deployment would source these from a licensing authority.
var driverClaims = map[string]any{
	"name":          "Joe Bloggs",
	"licenseNumber": "UK-TRK-2024-001",
	"vehicleClass":  "HGV",
	"country":       "GB",
}

// IdentityService creates or returns the driver's published identity.
type IdentityService interface {
	EnsureIdentity(ctx context.Context, role id.ActorRole) (domain.ActorIdentity, error)
	LoadIdentity(ctx context.Context, role id.ActorRole) (domain.ActorIdentity, error)
}

// CredentialService issues a credential about a subject.
type CredentialService interface {
	Issue(ctx context.Context, subjectRole id.ActorRole, subjectDID id.DID, claims map[string]any) (string, error)
}

// PresentationService wraps the holder's current credential into a signed
// presentation.
type PresentationService interface {
	Present(ctx context.Context, role id.ActorRole) (string, error)
}

// VerifierService checks a presentation token end to end.
type VerifierService interface {
	Verify(ctx context.Context, vpToken string) (verifier.Result, error)
}

// WalletReader loads the driver's current presentation for verification.
type WalletReader interface {
	LoadPresentation(ctx context.Context, role id.ActorRole) (string, error)
}

// DriverHandler is the thin HTTP layer over the driver credential pipeline.
// It delegates to domain services without embedding business logic so
// transport concerns remain isolated.
type DriverHandler struct {
	logger        *slog.Logger
	identities    IdentityService
	credentials   CredentialService
	presentations PresentationService
	verifier      VerifierService
	wallet        WalletReader
}

func NewDriverHandler(
	identities IdentityService,
	credentials CredentialService,
	presentations PresentationService,
	verifierService VerifierService,
	wallet WalletReader,
	logger *slog.Logger,
) *DriverHandler {
	return &DriverHandler{
		logger:        logger,
		identities:    identities,
		credentials:   credentials,
		presentations: presentations,
		verifier:      verifierService,
		wallet:        wallet,
	}
}

// Register registers the driver routes with the chi router.
func (h *DriverHandler) Register(r chi.Router) {
	r.Post("/driver/create-did", h.handleCreateDID)
	r.Post("/driver/issue-vc", h.handleIssueVC)
	r.Post("/driver/create-vp", h.handleCreateVP)
	r.Post("/driver/verify", h.handleVerify)
}

func (h *DriverHandler) handleCreateDID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := h.identities.EnsureIdentity(ctx, id.RoleDriver)
	if err != nil {
		h.writeError(ctx, w, "create driver DID", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"did": identity.DID().String(),
	})
}

func (h *DriverHandler) handleIssueVC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// The credential subject must already hold a published DID; only the
	// issuer identity is created on demand.
	driver, err := h.identities.LoadIdentity(ctx, id.RoleDriver)
	if err != nil {
		h.writeError(ctx, w, "load driver identity", err)
		return
	}

	vcToken, err := h.credentials.Issue(ctx, id.RoleDriver, driver.DID(), driverClaims)
	if err != nil {
		h.writeError(ctx, w, "issue credential", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"vc": vcToken,
	})
}

func (h *DriverHandler) handleCreateVP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vpToken, err := h.presentations.Present(ctx, id.RoleDriver)
	if err != nil {
		h.writeError(ctx, w, "create presentation", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"vp": vpToken,
	})
}

func (h *DriverHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vpToken, err := h.wallet.LoadPresentation(ctx, id.RoleDriver)
	if err != nil {
		h.writeError(ctx, w, "load current presentation", err)
		return
	}

	result, err := h.verifier.Verify(ctx, vpToken)
	if err != nil {
		h.writeError(ctx, w, "verify presentation", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"valid":            result.Valid,
		"holder":           result.Holder.String(),
		"credential_count": result.CredentialCount,
	})
}

func (h *DriverHandler) writeError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.ErrorContext(ctx, op+" failed",
			"request_id", requestcontext.RequestID(ctx),
			"code", dErrors.CodeOf(err),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
