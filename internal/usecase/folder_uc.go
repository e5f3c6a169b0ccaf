package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"media-production-workflow/internal/domain"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
	"media-production-workflow/internal/infra/metrics"
)

// Locker serializes mutations on one folder key. The redis implementation
// backs it in production; tests pass a no-op.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// NopLocker is a Locker for single-process setups (the snapshot backend)
// where the store's own critical section already serializes writers.
type NopLocker struct{}

func (NopLocker) TryLock(context.Context, string, time.Duration) (string, error) { return "", nil }
func (NopLocker) Unlock(context.Context, string, string) error                   { return nil }

const folderLockTTL = 10 * time.Second

// FolderUseCase builds the per-job deliverable folder view, registers
// upload records, and owns the folder metadata mutations (rename,
// visibility, ordering).
type FolderUseCase struct {
	folders   repository.FolderMetaRepository
	uploads   repository.UploadRepository
	orders    repository.OrderRepository
	integrity *IntegrityUseCase
	locker    Locker
	log       *zerolog.Logger
}

func NewFolderUseCase(
	folders repository.FolderMetaRepository,
	uploads repository.UploadRepository,
	orders repository.OrderRepository,
	integrity *IntegrityUseCase,
	locker Locker,
	logger *zerolog.Logger,
) *FolderUseCase {
	if locker == nil {
		locker = NopLocker{}
	}
	return &FolderUseCase{
		folders:   folders,
		uploads:   uploads,
		orders:    orders,
		integrity: integrity,
		locker:    locker,
		log:       logger,
	}
}

// RegisterUpload stores a new editor deliverable record. The reference
// check runs before anything reaches the store: an upload pointing at a
// missing job, a missing order, or an order of a different job is
// rejected as ErrInvalidArgument.
func (uc *FolderUseCase) RegisterUpload(ctx context.Context, upload *model.EditorUpload) (*model.EditorUpload, error) {
	check, err := uc.integrity.ValidateEditorUpload(ctx, upload)
	if err != nil {
		return nil, err
	}
	if !check.Valid {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, strings.Join(check.Errors, "; "))
	}

	if upload.ID == "" {
		upload.ID = newID()
	}
	if upload.Status == "" {
		upload.Status = model.UploadStatusForEditing
	}
	now := time.Now().UTC()
	if upload.CreatedAt.IsZero() {
		upload.CreatedAt = now
	}
	upload.UpdatedAt = now

	if err := uc.uploads.Save(ctx, repository.NoTX, upload); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	metrics.IncFolderOp("upload")
	uc.log.Debug().Str("job_id", upload.JobID).Str("upload_id", upload.ID).Msg("upload registered")
	return upload, nil
}

// GetUploadFolders merges explicit folder metadata with groupings
// inferred from uploads sharing a path/token, attaches the
// recipient-visible files, and returns folders sorted by display order
// (unordered folders last).
//
// A file is visible only when its owning order has reached completed;
// files on orders still in internal review are hidden. Files with no
// owning order have no review gate and are always shown.
func (uc *FolderUseCase) GetUploadFolders(ctx context.Context, jobID string) ([]*model.Folder, error) {
	metas, err := uc.folders.ListByJob(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, fmt.Errorf("list folder metadata for job %s: %w", jobID, err)
	}
	ups, err := uc.uploads.ListByJob(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, fmt.Errorf("list uploads for job %s: %w", jobID, err)
	}
	orders, err := uc.orders.ListByJob(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, fmt.Errorf("list orders for job %s: %w", jobID, err)
	}
	approved := make(map[string]bool, len(orders))
	for _, o := range orders {
		approved[o.ID] = o.Status == model.OrderStatusCompleted
	}

	byKey := make(map[string]*model.Folder)
	var out []*model.Folder

	appendFolder := func(f *model.Folder) *model.Folder {
		byKey[f.Key.String()] = f
		out = append(out, f)
		return f
	}

	for _, m := range metas {
		appendFolder(&model.Folder{
			Key:          model.FolderKey{Kind: model.FolderKeyMeta, Value: m.Key},
			JobID:        m.JobID,
			Name:         m.PartnerFolderName,
			Path:         m.FolderPath,
			IsVisible:    m.IsVisible,
			DisplayOrder: m.DisplayOrder,
		})
	}

	for _, u := range ups {
		folder := uc.matchMeta(metas, byKey, u)
		if folder == nil {
			// No metadata record yet: infer a folder on the fly.
			key := model.UploadFolderKey(u)
			folder = byKey[key.String()]
			if folder == nil {
				folder = appendFolder(&model.Folder{
					Key:       key,
					JobID:     jobID,
					Name:      uploadDisplayName(u),
					Path:      u.FolderPath,
					IsVisible: true,
				})
			}
		}
		if uc.fileVisible(u, approved) {
			folder.Files = append(folder.Files, u)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DisplayOrder, out[j].DisplayOrder
		switch {
		case a != nil && b != nil && *a != *b:
			return *a < *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return out[i].Name < out[j].Name
	})

	metrics.IncFolderOp("list")
	return out, nil
}

// CreateFolder stores an explicit, initially empty folder metadata record.
func (uc *FolderUseCase) CreateFolder(ctx context.Context, jobID, name, path, token, orderID string) (*model.FolderMeta, error) {
	if jobID == "" || name == "" {
		return nil, fmt.Errorf("%w: job id and folder name are required", domain.ErrInvalidArgument)
	}
	now := time.Now().UTC()
	meta := &model.FolderMeta{
		Key:               uuid.NewString(),
		JobID:             jobID,
		FolderPath:        path,
		FolderToken:       token,
		OrderID:           orderID,
		PartnerFolderName: name,
		IsVisible:         true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.folders.Save(ctx, repository.NoTX, meta); err != nil {
		return nil, fmt.Errorf("save folder metadata: %w", err)
	}
	metrics.IncFolderOp("create")
	uc.log.Debug().Str("job_id", jobID).Str("folder_key", meta.Key).Msg("folder created")
	return meta, nil
}

// UpdateFolderName renames a folder, auto-creating metadata when the
// folder only existed as an inferred grouping. Idempotent.
func (uc *FolderUseCase) UpdateFolderName(ctx context.Context, jobID, folderKey, name string) (*model.FolderMeta, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: folder name is required", domain.ErrInvalidArgument)
	}
	meta, err := uc.mutate(ctx, jobID, folderKey, func(m *model.FolderMeta) {
		m.PartnerFolderName = name
	})
	if err == nil {
		metrics.IncFolderOp("rename")
	}
	return meta, err
}

// UpdateFolderVisibility toggles the recipient-facing visibility flag.
func (uc *FolderUseCase) UpdateFolderVisibility(ctx context.Context, jobID, folderKey string, visible bool) (*model.FolderMeta, error) {
	meta, err := uc.mutate(ctx, jobID, folderKey, func(m *model.FolderMeta) {
		m.IsVisible = visible
	})
	if err == nil {
		metrics.IncFolderOp("visibility")
	}
	return meta, err
}

// UpdateFolderOrder sets the explicit display position.
func (uc *FolderUseCase) UpdateFolderOrder(ctx context.Context, jobID, folderKey string, displayOrder int) (*model.FolderMeta, error) {
	meta, err := uc.mutate(ctx, jobID, folderKey, func(m *model.FolderMeta) {
		order := displayOrder
		m.DisplayOrder = &order
	})
	if err == nil {
		metrics.IncFolderOp("reorder")
	}
	return meta, err
}

// mutate applies a metadata change under the per-folder lock, resolving
// (or auto-creating) the metadata record first.
func (uc *FolderUseCase) mutate(ctx context.Context, jobID, folderKey string, apply func(*model.FolderMeta)) (*model.FolderMeta, error) {
	lockKey := "folder:" + jobID + ":" + folderKey
	token, err := uc.locker.TryLock(ctx, lockKey, folderLockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrFolderLocked, folderKey)
	}
	defer func() {
		if err := uc.locker.Unlock(ctx, lockKey, token); err != nil {
			uc.log.Warn().Err(err).Str("lock_key", lockKey).Msg("folder unlock failed")
		}
	}()

	meta, err := uc.resolveMeta(ctx, jobID, folderKey)
	if err != nil {
		return nil, err
	}
	apply(meta)
	meta.UpdatedAt = time.Now().UTC()
	if err := uc.folders.Save(ctx, repository.NoTX, meta); err != nil {
		return nil, fmt.Errorf("save folder metadata %s: %w", meta.Key, err)
	}
	return meta, nil
}

// resolveMeta maps a folder handle back to its metadata record, creating
// one from the matching uploads when the folder was purely inferred.
func (uc *FolderUseCase) resolveMeta(ctx context.Context, jobID, folderKey string) (*model.FolderMeta, error) {
	key := model.ParseFolderKey(folderKey)
	if key == (model.FolderKey{}) {
		return nil, fmt.Errorf("%w: malformed folder key %q", domain.ErrInvalidArgument, folderKey)
	}

	if key.Kind == model.FolderKeyMeta {
		meta, err := uc.folders.FindByKey(ctx, repository.NoTX, key.Value)
		if err != nil {
			return nil, err
		}
		if meta.JobID != jobID {
			return nil, fmt.Errorf("%w: folder %s", domain.ErrNotFound, key.Value)
		}
		return meta, nil
	}

	metas, err := uc.folders.ListByJob(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, fmt.Errorf("list folder metadata for job %s: %w", jobID, err)
	}
	for _, m := range metas {
		if metaMatchesKey(m, key) {
			return m, nil
		}
	}

	// Inferred folder without metadata yet: derive one from its uploads.
	ups, err := uc.uploads.ListByJob(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, fmt.Errorf("list uploads for job %s: %w", jobID, err)
	}
	for _, u := range ups {
		if model.UploadFolderKey(u) != key {
			continue
		}
		now := time.Now().UTC()
		meta := &model.FolderMeta{
			Key:               uuid.NewString(),
			JobID:             jobID,
			FolderPath:        u.FolderPath,
			FolderToken:       u.FolderToken,
			OrderID:           u.OrderID,
			PartnerFolderName: uploadDisplayName(u),
			IsVisible:         true,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := uc.folders.Save(ctx, repository.NoTX, meta); err != nil {
			return nil, fmt.Errorf("auto-create folder metadata: %w", err)
		}
		uc.log.Debug().Str("job_id", jobID).Str("folder_key", meta.Key).Msg("folder metadata auto-created")
		return meta, nil
	}
	return nil, fmt.Errorf("%w: folder %s", domain.ErrNotFound, folderKey)
}

// matchMeta finds the derived folder of the first metadata record the
// upload populates.
func (uc *FolderUseCase) matchMeta(metas []*model.FolderMeta, byKey map[string]*model.Folder, u *model.EditorUpload) *model.Folder {
	for _, m := range metas {
		if m.Matches(u) {
			return byKey[(model.FolderKey{Kind: model.FolderKeyMeta, Value: m.Key}).String()]
		}
	}
	return nil
}

func (uc *FolderUseCase) fileVisible(u *model.EditorUpload, approved map[string]bool) bool {
	if u.OrderID == "" {
		return true
	}
	return approved[u.OrderID]
}

func metaMatchesKey(m *model.FolderMeta, key model.FolderKey) bool {
	switch key.Kind {
	case model.FolderKeyToken:
		return m.FolderToken != "" && m.FolderToken == key.Value
	case model.FolderKeyOrderScoped:
		orderID, path, ok := strings.Cut(key.Value, "|")
		if !ok {
			return false
		}
		return m.OrderID == orderID && model.NormalizeFolderPath(m.FolderPath) == path
	default:
		return false
	}
}

func uploadDisplayName(u *model.EditorUpload) string {
	if u.PartnerFolderName != "" {
		return u.PartnerFolderName
	}
	if u.EditorFolderName != "" {
		return u.EditorFolderName
	}
	path := model.NormalizeFolderPath(u.FolderPath)
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
