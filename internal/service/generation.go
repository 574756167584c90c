package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/openbanana/studio-server-go/internal/config"
	apperrors "github.com/openbanana/studio-server-go/internal/errors"
	"github.com/openbanana/studio-server-go/internal/model"
	"github.com/openbanana/studio-server-go/internal/repository"
	"github.com/openbanana/studio-server-go/internal/storage"
	"github.com/openbanana/studio-server-go/internal/upstream"
	"github.com/openbanana/studio-server-go/internal/util"
)

// GenerationService runs the credit-gated generation flow: balance check,
// credential selection, per-image upstream calls, artifact persistence and
// settlement. Units run sequentially; a failed unit is skipped, never billed.
type GenerationService struct {
	userRepo      repository.UserRepository
	creationRepo  repository.CreationRepository
	apiConfigRepo repository.APIConfigRepository
	client        upstream.Client
	store         storage.Store
	downloader    storage.Downloader
	systemCred    upstream.Credential
}

func NewGenerationService(
	userRepo repository.UserRepository,
	creationRepo repository.CreationRepository,
	apiConfigRepo repository.APIConfigRepository,
	client upstream.Client,
	store storage.Store,
	downloader storage.Downloader,
	systemCred upstream.Credential,
) *GenerationService {
	return &GenerationService{
		userRepo:      userRepo,
		creationRepo:  creationRepo,
		apiConfigRepo: apiConfigRepo,
		client:        client,
		store:         store,
		downloader:    downloader,
		systemCred:    systemCred,
	}
}

type GenerateParams struct {
	Prompt string
	Model  model.ImageModel
	Size   string
	Width  int
	Height int
	Count  int
}

type EditParams struct {
	Prompt string
	Model  model.ImageModel
	Size   string
	Width  int
	Height int
	Images []upstream.InputImage
}

// GenerationResult is the outcome of one orchestration call. Creations may
// hold fewer entries than were requested; only those were charged.
type GenerationResult struct {
	Creations       []model.Creation
	RemainingPoints int
	UsedPersonalKey bool
}

// credentialSelection is the outcome of choosing between the user's personal
// key and the system key for one request.
type credentialSelection struct {
	cred     upstream.Credential
	personal bool
}

// Generate produces up to params.Count images for the prompt, charging one
// point per image that was actually persisted.
func (s *GenerationService) Generate(ctx context.Context, userID string, params GenerateParams) (*GenerationResult, error) {
	if err := validatePrompt(params.Prompt); err != nil {
		return nil, err
	}
	params.Model = normalizeModel(params.Model)
	count := params.Count
	if count < 1 {
		count = 1
	}
	if count > config.MaxImagesPerRequest {
		count = config.MaxImagesPerRequest
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User")
	}

	selection, err := s.selectCredential(ctx, user, count)
	if err != nil {
		return nil, err
	}

	size := resolveSize(params.Width, params.Height, params.Size)

	var creations []model.Creation
	var tokens int64
	for i := 0; i < count; i++ {
		creation, used, err := s.produceUnit(ctx, user.ID, params.Prompt, params.Model, size, selection.cred)
		if err != nil {
			log.Warn().Err(err).
				Str("userId", user.ID).
				Int("unit", i+1).
				Int("requested", count).
				Msg("generation unit failed, skipping")
			continue
		}
		creations = append(creations, *creation)
		tokens += used
	}

	return s.settle(ctx, user, selection, creations, tokens)
}

// Edit produces exactly one image from a prompt plus reference images.
func (s *GenerationService) Edit(ctx context.Context, userID string, params EditParams) (*GenerationResult, error) {
	if err := validatePrompt(params.Prompt); err != nil {
		return nil, err
	}
	if len(params.Images) == 0 {
		return nil, apperrors.MissingRequired("image")
	}
	if len(params.Images) > config.MaxEditInputImages {
		return nil, apperrors.InvalidInput("image", fmt.Sprintf("at most %d reference images", config.MaxEditInputImages))
	}
	params.Model = normalizeModel(params.Model)

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User")
	}

	selection, err := s.selectCredential(ctx, user, 1)
	if err != nil {
		return nil, err
	}

	size := resolveEditSize(params)

	result, err := s.client.Edit(ctx, upstream.EditRequest{
		Prompt:     params.Prompt,
		Model:      params.Model,
		Size:       size,
		Images:     params.Images,
		Credential: selection.cred,
	})
	if err != nil {
		log.Warn().Err(err).Str("userId", user.ID).Msg("edit request failed upstream")
		return s.settle(ctx, user, selection, nil, 0)
	}

	creation, err := s.persistResult(ctx, user.ID, params.Prompt, params.Model, size, result)
	if err != nil {
		log.Warn().Err(err).Str("userId", user.ID).Msg("persisting edited image failed")
		return s.settle(ctx, user, selection, nil, 0)
	}

	return s.settle(ctx, user, selection, []model.Creation{*creation}, result.Tokens)
}

// selectCredential implements the metering gate: a configured personal key
// always wins and bypasses the balance check entirely.
func (s *GenerationService) selectCredential(ctx context.Context, user *model.User, required int) (*credentialSelection, error) {
	cfg, err := s.apiConfigRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		// A broken key lookup must not block metered users; fall through to
		// the shared key like the balance path would.
		log.Error().Err(err).Str("userId", user.ID).Msg("personal key lookup failed")
	}
	if cfg != nil {
		cred := upstream.Credential{APIKey: cfg.APIKey, BaseURL: cfg.APIBaseURL}
		if cred.BaseURL == "" {
			cred.BaseURL = s.systemCred.BaseURL
		}
		return &credentialSelection{cred: cred, personal: true}, nil
	}

	if user.DrawingPoints < required {
		return nil, apperrors.InsufficientBalance(required, user.DrawingPoints)
	}
	return &credentialSelection{cred: s.systemCred}, nil
}

// produceUnit runs one unit end to end: upstream call, download, persist,
// record. The file is written before the row so a crash can only leave an
// orphaned file, never a record pointing at nothing.
func (s *GenerationService) produceUnit(
	ctx context.Context,
	userID, prompt string,
	imageModel model.ImageModel,
	size string,
	cred upstream.Credential,
) (*model.Creation, int64, error) {
	result, err := s.client.Generate(ctx, upstream.GenerateRequest{
		Prompt:     prompt,
		Model:      imageModel,
		Size:       size,
		Credential: cred,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("upstream: %w", err)
	}
	creation, err := s.persistResult(ctx, userID, prompt, imageModel, size, result)
	if err != nil {
		return nil, 0, err
	}
	return creation, result.Tokens, nil
}

func (s *GenerationService) persistResult(
	ctx context.Context,
	userID, prompt string,
	imageModel model.ImageModel,
	requestedSize string,
	result *upstream.Result,
) (*model.Creation, error) {
	data, err := s.downloader.Download(ctx, result.URL)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}

	fileName := uuid.NewString() + ".png"
	publicURL, err := s.store.Save(ctx, fileName, data)
	if err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}

	sizeLabel := recordedSize(data, result, requestedSize)
	modelName := string(imageModel)

	creation, err := s.creationRepo.Create(ctx, model.CreateCreationParams{
		ID:       uuid.NewString(),
		UserID:   userID,
		Prompt:   prompt,
		ImageURL: publicURL,
		Model:    &modelName,
		Size:     sizeLabel,
	})
	if err != nil {
		// The row never landed; reclaim the file instead of leaving it to
		// the orphan sweep.
		if rmErr := s.store.Remove(ctx, publicURL); rmErr != nil {
			log.Error().Err(rmErr).Str("url", publicURL).Msg("failed to remove artifact after insert failure")
		}
		return nil, fmt.Errorf("record artifact: %w", err)
	}
	return creation, nil
}

// settle charges for what was actually produced. With a personal key nothing
// is debited; otherwise the debit is a conditional decrement, and if a
// concurrent request drained the balance first the fresh artifacts are
// rolled back so the account never goes negative.
func (s *GenerationService) settle(
	ctx context.Context,
	user *model.User,
	selection *credentialSelection,
	creations []model.Creation,
	tokens int64,
) (*GenerationResult, error) {
	if len(creations) == 0 {
		return nil, apperrors.GenerationFailed()
	}

	if selection.personal {
		if err := s.apiConfigRepo.TouchUpdatedAt(ctx, user.ID); err != nil {
			log.Error().Err(err).Str("userId", user.ID).Msg("failed to touch personal key usage")
		}
		return &GenerationResult{
			Creations:       creations,
			RemainingPoints: user.DrawingPoints,
			UsedPersonalKey: true,
		}, nil
	}

	if tokens > 0 {
		// Lifetime counter only, never billed; a failed write is not worth
		// failing the request over.
		if err := s.userRepo.AddTokenUsage(ctx, user.ID, tokens); err != nil {
			log.Error().Err(err).Str("userId", user.ID).Msg("failed to record token usage")
		}
	}

	charged := len(creations)
	updated, err := s.userRepo.DebitIfSufficient(ctx, user.ID, charged)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if updated == nil {
		log.Warn().
			Str("userId", user.ID).
			Int("charged", charged).
			Msg("balance drained concurrently, rolling back produced artifacts")
		s.rollbackCreations(ctx, creations)
		return nil, apperrors.InsufficientBalance(charged, user.DrawingPoints)
	}

	log.Info().
		Str("userId", user.ID).
		Int("produced", charged).
		Int("remainingPoints", updated.DrawingPoints).
		Msg("generation settled")

	return &GenerationResult{
		Creations:       creations,
		RemainingPoints: updated.DrawingPoints,
	}, nil
}

func (s *GenerationService) rollbackCreations(ctx context.Context, creations []model.Creation) {
	for _, c := range creations {
		if err := s.creationRepo.Delete(ctx, c.ID); err != nil {
			log.Error().Err(err).Str("creationId", c.ID).Msg("rollback: failed to delete creation")
			continue
		}
		if err := s.store.Remove(ctx, c.ImageURL); err != nil {
			log.Error().Err(err).Str("url", c.ImageURL).Msg("rollback: failed to remove artifact file")
		}
	}
}

// History returns the user's most recent creations.
func (s *GenerationService) History(ctx context.Context, userID string, limit, offset int) ([]model.Creation, error) {
	creations, err := s.creationRepo.FindByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return creations, nil
}

// GetCreation fetches one creation owned by the user.
func (s *GenerationService) GetCreation(ctx context.Context, userID, creationID string) (*model.Creation, error) {
	creation, err := s.creationRepo.FindByIDAndUser(ctx, creationID, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if creation == nil {
		return nil, apperrors.NotFound("Creation")
	}
	return creation, nil
}

// DeleteCreation removes a creation and its backing file. The file goes
// first; if its removal fails the row stays so the record keeps pointing at
// an existing artifact.
func (s *GenerationService) DeleteCreation(ctx context.Context, userID, creationID string) error {
	creation, err := s.creationRepo.FindByIDAndUser(ctx, creationID, userID)
	if err != nil {
		return apperrors.Database(err)
	}
	if creation == nil {
		return apperrors.NotFound("Creation")
	}

	if err := s.store.Remove(ctx, creation.ImageURL); err != nil {
		return apperrors.Internal("Failed to remove image file").WithCause(err)
	}
	if err := s.creationRepo.Delete(ctx, creation.ID); err != nil {
		return apperrors.Database(err)
	}

	log.Info().Str("userId", userID).Str("creationId", creationID).Msg("creation deleted")
	return nil
}

func validatePrompt(prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return apperrors.MissingRequired("prompt")
	}
	if len(prompt) > config.MaxPromptLength {
		return apperrors.InvalidInput("prompt", fmt.Sprintf("longer than %d characters", config.MaxPromptLength))
	}
	return nil
}

func normalizeModel(m model.ImageModel) model.ImageModel {
	if m == "" || !model.IsSupportedModel(m) {
		return model.DefaultModel
	}
	return m
}

// resolveSize applies the size precedence: explicit dimensions beat a named
// size string, which beats the model default.
func resolveSize(width, height int, named string) string {
	if width > 0 && height > 0 {
		return fmt.Sprintf("%dx%d", width, height)
	}
	if util.IsValidSize(named) {
		return named
	}
	return model.DefaultSize
}

// resolveEditSize prefers explicit dimensions, then a named size, then the
// first reference image's own dimensions. An empty result lets the upstream
// pick.
func resolveEditSize(params EditParams) string {
	if params.Width > 0 && params.Height > 0 {
		return fmt.Sprintf("%dx%d", params.Width, params.Height)
	}
	if util.IsValidSize(params.Size) {
		return params.Size
	}
	if len(params.Images) > 0 {
		if w, h, ok := storage.InspectDimensions(params.Images[0].Data); ok {
			return fmt.Sprintf("%dx%d", w, h)
		}
	}
	return ""
}

// recordedSize picks the size label stored on the artifact record: true
// pixel dimensions of the downloaded bytes, then upstream-reported
// dimensions, then the requested size as a best-effort label.
func recordedSize(data []byte, result *upstream.Result, requestedSize string) *string {
	if w, h, ok := storage.InspectDimensions(data); ok {
		s := fmt.Sprintf("%dx%d", w, h)
		return &s
	}
	if result.Width > 0 && result.Height > 0 {
		s := fmt.Sprintf("%dx%d", result.Width, result.Height)
		return &s
	}
	if requestedSize != "" {
		s := requestedSize
		return &s
	}
	return nil
}
