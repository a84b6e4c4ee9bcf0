package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/nurpe/buildops-leveling/internal/model"
)

type SnapshotStore interface {
	CreateSnapshot(ctx context.Context, snapshot model.Snapshot, items []model.SnapshotItem) (*model.Snapshot, error)
	ListSnapshots(ctx context.Context, projectID uuid.UUID) ([]model.Snapshot, error)
	GetSnapshot(ctx context.Context, snapshotID, companyID uuid.UUID) (*model.Snapshot, error)
	ListItems(ctx context.Context, snapshotID uuid.UUID) ([]model.SnapshotItem, error)
}

type ExcelGenerator interface {
	Generate(view model.SnapshotView) ([]byte, error)
}

type PDFGenerator interface {
	Generate(view model.SnapshotView) ([]byte, error)
}

type SnapshotService struct {
	snapshots SnapshotStore
	leveling  LevelingStore
	excel     ExcelGenerator
	pdf       PDFGenerator
	log       zerolog.Logger
}

func NewSnapshotService(snapshots SnapshotStore, leveling LevelingStore, excel ExcelGenerator, pdf PDFGenerator, log zerolog.Logger) *SnapshotService {
	return &SnapshotService{
		snapshots: snapshots,
		leveling:  leveling,
		excel:     excel,
		pdf:       pdf,
		log:       log,
	}
}

type CreateSnapshotInput struct {
	ProjectID uuid.UUID
	Title     string
	Notes     string
}

// Create freezes the project's current leveling state: one item per
// bid, carrying the amount, notes and alternates as they stand right
// now. The header is locked on insert and nothing mutates it after.
func (s *SnapshotService) Create(ctx context.Context, principal model.Principal, input CreateSnapshotInput) (*model.Snapshot, error) {
	if !principal.Valid() {
		return nil, ErrPermissionDenied
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	if _, err := s.leveling.GetProject(ctx, input.ProjectID, principal.CompanyID); err != nil {
		return nil, mapRepoErr(err)
	}

	trades, err := s.leveling.ListTrades(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	bids, err := s.leveling.ListBids(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	alternates, err := s.leveling.ListAlternates(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}

	tradeNames := make(map[uuid.UUID]string, len(trades))
	for _, trade := range trades {
		tradeNames[trade.ID] = trade.TradeName
	}
	altsByBid := make(map[uuid.UUID][]model.Alternate, len(bids))
	for _, alt := range alternates {
		altsByBid[alt.BidID] = append(altsByBid[alt.BidID], alt)
	}

	items := make([]model.SnapshotItem, 0, len(bids))
	for _, bid := range bids {
		lineItems, err := freezeLineItems(altsByBid[bid.ID])
		if err != nil {
			return nil, err
		}
		items = append(items, model.SnapshotItem{
			TradeID:       bid.TradeID,
			TradeName:     tradeNames[bid.TradeID],
			SubID:         bid.SubID,
			SubName:       bid.SubName,
			Status:        bid.Status,
			BaseBidAmount: bid.BaseBidAmount,
			Notes:         bid.Notes,
			LineItems:     lineItems,
		})
	}

	created, err := s.snapshots.CreateSnapshot(ctx, model.Snapshot{
		ProjectID: input.ProjectID,
		Title:     title,
		Notes:     input.Notes,
		CreatedBy: principal.UserID,
		Locked:    true,
	}, items)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("project_id", input.ProjectID.String()).
		Str("snapshot_id", created.ID.String()).
		Int("items", len(items)).
		Msg("snapshot created")
	return created, nil
}

func (s *SnapshotService) List(ctx context.Context, principal model.Principal, projectID uuid.UUID) ([]model.Snapshot, error) {
	if !principal.Valid() {
		return nil, ErrPermissionDenied
	}
	if _, err := s.leveling.GetProject(ctx, projectID, principal.CompanyID); err != nil {
		return nil, mapRepoErr(err)
	}
	return s.snapshots.ListSnapshots(ctx, projectID)
}

// Get loads a snapshot with its frozen items grouped by trade. The
// stats come from the same engine the live board uses, fed with
// pseudo-bids built from the frozen rows, so historical review shows
// the exact captured numbers.
func (s *SnapshotService) Get(ctx context.Context, principal model.Principal, snapshotID uuid.UUID) (*model.SnapshotView, error) {
	if !principal.Valid() {
		return nil, ErrPermissionDenied
	}
	snapshot, err := s.snapshots.GetSnapshot(ctx, snapshotID, principal.CompanyID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	project, err := s.leveling.GetProject(ctx, snapshot.ProjectID, principal.CompanyID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	items, err := s.snapshots.ListItems(ctx, snapshot.ID)
	if err != nil {
		return nil, err
	}

	return &model.SnapshotView{
		Snapshot:    *snapshot,
		ProjectName: project.Name,
		Trades:      groupSnapshotItems(items),
	}, nil
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *SnapshotService) ExportExcel(ctx context.Context, principal model.Principal, snapshotID uuid.UUID) (*ExportResult, error) {
	view, err := s.Get(ctx, principal, snapshotID)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(*view)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: buildExportFileName(view.Snapshot, "xlsx"),
		Content:  content,
	}, nil
}

func (s *SnapshotService) ExportPDF(ctx context.Context, principal model.Principal, snapshotID uuid.UUID) (*ExportResult, error) {
	view, err := s.Get(ctx, principal, snapshotID)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(*view)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: buildExportFileName(view.Snapshot, "pdf"),
		Content:  content,
	}, nil
}

func freezeLineItems(alternates []model.Alternate) (datatypes.JSON, error) {
	payload := model.SnapshotLineItems{
		SchemaVersion: model.LineItemsSchemaVersion,
		Alternates:    make([]model.AlternateLine, 0, len(alternates)),
	}
	for _, alt := range alternates {
		payload.Alternates = append(payload.Alternates, model.AlternateLine{
			Title:    alt.Title,
			Accepted: alt.Accepted,
			Amount:   alt.Amount,
			Notes:    alt.Notes,
		})
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// groupSnapshotItems buckets frozen items by trade, keeping the stored
// trade-name ordering, and recomputes per-trade stats from the frozen
// amounts. Snapshots do not freeze budgets, so budget deltas are absent
// from historical views.
func groupSnapshotItems(items []model.SnapshotItem) []model.SnapshotTradeLine {
	lines := []model.SnapshotTradeLine{}
	index := make(map[uuid.UUID]int)
	for _, item := range items {
		pos, ok := index[item.TradeID]
		if !ok {
			lines = append(lines, model.SnapshotTradeLine{
				TradeID:   item.TradeID,
				TradeName: item.TradeName,
			})
			pos = len(lines) - 1
			index[item.TradeID] = pos
		}
		lines[pos].Items = append(lines[pos].Items, item)
	}
	for i := range lines {
		pseudoBids := make([]model.Bid, 0, len(lines[i].Items))
		for _, item := range lines[i].Items {
			pseudoBids = append(pseudoBids, item.AsBid())
		}
		lines[i].Stats = ComputeTradeStats(pseudoBids, nil)
	}
	return lines
}

func buildExportFileName(snapshot model.Snapshot, extension string) string {
	title := sanitizeFileName(snapshot.Title)
	if title == "" {
		title = snapshot.ID.String()
	}
	return fmt.Sprintf("leveling-%s-%s.%s", title, snapshot.CreatedAt.Format("20060102"), extension)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
