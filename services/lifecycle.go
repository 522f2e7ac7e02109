package services

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/errgroup"
)

// FloorState is the selection state of the Controller.
type FloorState int

const (
	NoFloorSelected FloorState = iota
	FloorLoading
	FloorReady
)

func (s FloorState) String() string {
	switch s {
	case FloorLoading:
		return "loading"
	case FloorReady:
		return "ready"
	default:
		return "none"
	}
}

// Detail row fields accepted by EditDetailCell.
const (
	FieldChildComponent = "childComponent"
	FieldNo             = "no"
	FieldLength         = "length"
	FieldWidth          = "widthBreadth"
	FieldHeight         = "heightDepth"
	FieldQuantity       = "quantity"
	FieldIsDeduction    = "isDeduction"
)

// Material grid fields accepted by EditMaterialCell.
const (
	FieldMaterial        = "material"
	FieldConsumptionRate = "consumptionRate"
	FieldWastage         = "wastage"
	FieldMaterialRate    = "materialRate"
	FieldRemarks         = "remarks"
	FieldLabourRate      = "labourRate"
)

// ControllerSources bundles the reference data the controller reads.
type ControllerSources struct {
	Templates TemplateSource
	Catalog   MaterialCatalogSource
}

// Controller drives the current-floor selection on top of a CacheStore. It
// holds the editor's working copy of the selected floor and funnels every
// write into the store.
type Controller struct {
	mu sync.Mutex

	store   *CacheStore
	remote  Remote
	sources ControllerSources

	// SettleDelay debounces quantity-to-material recomputation. Zero runs
	// it as soon as an edit has been aggregated.
	settleDelay time.Duration

	estimationID  string
	initialLoaded bool
	loadGen       uint64

	state    FloorState
	current  string
	quantity []ComponentGroup
	material []MaterialGroupRow
	expense  *ExpenseSummary

	quantityDirty bool
	pending       bool
	gen           uint64
	timer         *time.Timer
}

// NewController creates a controller with nothing selected. remote may be
// nil when the estimation is not persisted.
func NewController(store *CacheStore, remote Remote, sources ControllerSources, settleDelay time.Duration) *Controller {
	return &Controller{
		store:       store,
		remote:      remote,
		sources:     sources,
		settleDelay: settleDelay,
	}
}

// State returns the selection state and the selected floor.
func (c *Controller) State() (FloorState, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.current
}

// EstimationID returns the estimation the caches were last loaded for.
func (c *Controller) EstimationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.estimationID
}

// Pending reports whether a quantity recomputation is scheduled.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// View returns a copy of the editor's display state.
func (c *Controller) View() (FloorSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != FloorReady {
		return FloorSnapshot{}, nil
	}
	snap := FloorSnapshot{Floor: c.current, Category: CategoryForFloor(c.current)}
	var err error
	if snap.Quantity, err = clone(c.quantity); err != nil {
		return FloorSnapshot{}, err
	}
	if snap.Material, err = clone(c.material); err != nil {
		return FloorSnapshot{}, err
	}
	if c.expense != nil {
		exp, err := clone(*c.expense)
		if err != nil {
			return FloorSnapshot{}, err
		}
		snap.Expense = &exp
	}
	snap.Totals = ComputeFloorTotals(snap.Material, snap.Expense)
	return snap, nil
}

// LoadInitial fills the caches from the remote store once per estimation.
func (c *Controller) LoadInitial(ctx context.Context, estimationID string) error {
	c.mu.Lock()
	if c.initialLoaded && c.estimationID == estimationID {
		c.mu.Unlock()
		return nil
	}
	c.loadGen++
	gen := c.loadGen
	c.mu.Unlock()
	return c.load(ctx, estimationID, gen)
}

// Refresh drops the caches and re-runs the initial load, typically right
// after a successful save. If the fetch fails the previous caches stay.
func (c *Controller) Refresh(ctx context.Context, estimationID string) error {
	c.mu.Lock()
	c.initialLoaded = false
	c.cancelPendingLocked()
	c.loadGen++
	gen := c.loadGen
	c.mu.Unlock()
	return c.load(ctx, estimationID, gen)
}

func (c *Controller) load(ctx context.Context, estimationID string, gen uint64) error {
	var (
		quantity map[string][]ComponentGroup
		material map[string]FloorMaterials
	)
	if c.remote != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			q, err := c.remote.LoadFloorData(gctx, estimationID)
			if err != nil {
				return fmt.Errorf("load floor data: %w", err)
			}
			quantity = q
			return nil
		})
		g.Go(func() error {
			m, err := c.remote.LoadMaterialData(gctx, estimationID)
			if err != nil {
				return fmt.Errorf("load material data: %w", err)
			}
			material = m
			return nil
		})
		if err := g.Wait(); err != nil {
			log.Printf("lifecycle: initial load of %s failed: %v", estimationID, err)
			return &TransientIOError{Op: "initial load", Err: err}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.loadGen {
		log.Printf("lifecycle: discarding stale load of %s", estimationID)
		return nil
	}
	if err := c.store.Replace(quantity, material); err != nil {
		return err
	}
	c.estimationID = estimationID
	c.initialLoaded = true
	if c.state == FloorReady {
		c.cancelPendingLocked()
		if _, err := c.store.LoadFloor(c.current); err != nil {
			return err
		}
		return c.reloadLocked()
	}
	return nil
}

// Select makes floor the current floor. The previous floor's editor state
// is flushed into the store before anything else is loaded. An empty name
// clears the selection without touching the caches.
func (c *Controller) Select(floor string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelPendingLocked()
	if c.state == FloorReady {
		if err := c.flushLocked(); err != nil {
			return fmt.Errorf("flush %q: %w", c.current, err)
		}
	}

	c.clearEditorLocked()
	if floor == "" {
		return nil
	}

	c.state = FloorLoading
	c.current = floor
	if _, err := c.store.LoadFloor(floor); err != nil {
		c.clearEditorLocked()
		return err
	}
	if err := c.reloadLocked(); err != nil {
		c.clearEditorLocked()
		return err
	}
	c.state = FloorReady
	return nil
}

// Close cancels pending recomputation and drops the selection. Editor
// state that was not settled is discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
	c.clearEditorLocked()
}

// Flush writes the editor state of the current floor into the store.
func (c *Controller) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != FloorReady {
		return nil
	}
	c.cancelPendingLocked()
	if err := c.flushLocked(); err != nil {
		return err
	}
	return c.reloadLocked()
}

// Settle runs a scheduled recomputation now.
func (c *Controller) Settle() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending {
		return nil
	}
	c.cancelPendingLocked()
	return c.settleLocked()
}

// flushLocked writes unsettled quantity edits into the store. Material
// edits are already there: commitMaterialLocked writes them through.
func (c *Controller) flushLocked() error {
	if !c.quantityDirty {
		return nil
	}
	if err := c.store.SaveQuantity(c.current, c.quantity); err != nil {
		return err
	}
	c.quantityDirty = false
	return nil
}

func (c *Controller) settleLocked() error {
	if c.state != FloorReady {
		return nil
	}
	if err := c.store.SaveQuantity(c.current, c.quantity); err != nil {
		return err
	}
	c.quantityDirty = false
	return c.reloadLocked()
}

func (c *Controller) reloadLocked() error {
	if _, err := c.store.MaterialRows(c.current); err != nil {
		return err
	}
	snap, _, err := c.store.Snapshot(c.current)
	if err != nil {
		return err
	}
	c.quantity = snap.Quantity
	c.material = snap.Material
	c.expense = snap.Expense
	return nil
}

func (c *Controller) clearEditorLocked() {
	c.state = NoFloorSelected
	c.current = ""
	c.quantity = nil
	c.material = nil
	c.expense = nil
	c.quantityDirty = false
}

func (c *Controller) cancelPendingLocked() {
	c.gen++
	c.pending = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// scheduleLocked queues quantity-to-material propagation for the current
// floor once the triggering edit has been aggregated.
func (c *Controller) scheduleLocked() error {
	c.quantityDirty = true
	if c.settleDelay <= 0 {
		return c.settleLocked()
	}
	c.cancelPendingLocked()
	c.pending = true
	gen := c.gen
	c.timer = time.AfterFunc(c.settleDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.gen || !c.pending {
			return
		}
		c.pending = false
		c.timer = nil
		if err := c.settleLocked(); err != nil {
			log.Printf("lifecycle: recompute for %q failed: %v", c.current, err)
		}
	})
	return nil
}

func (c *Controller) readyLocked() error {
	if c.state != FloorReady {
		return &FatalStateError{Floor: c.current, Reason: "no floor is ready for editing"}
	}
	return nil
}

func (c *Controller) groupLocked(groupID string) (*ComponentGroup, error) {
	if err := c.readyLocked(); err != nil {
		return nil, err
	}
	i := FindGroup(c.quantity, groupID)
	if i < 0 {
		return nil, &NotFoundError{Kind: "component", Name: groupID}
	}
	return &c.quantity[i], nil
}

func findRow(rows []DetailRow, id string) int {
	for i := range rows {
		if rows[i].ID == id {
			return i
		}
	}
	return -1
}

// EditDetailCell applies one cell edit reported by the quantity grid.
func (c *Controller) EditDetailCell(groupID, rowID, field string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, err := c.groupLocked(groupID)
	if err != nil {
		return err
	}
	i := findRow(g.Rows, rowID)
	if i < 0 {
		return &NotFoundError{Kind: "detail row", Name: rowID}
	}
	r := &g.Rows[i]
	switch field {
	case FieldChildComponent:
		r.ChildComponent = fmt.Sprint(value)
		c.quantityDirty = true
		return nil
	case FieldNo:
		r.No = value
		r.Recalculate()
	case FieldLength:
		r.Length = value
		r.Recalculate()
	case FieldWidth:
		r.Width = value
		r.Recalculate()
	case FieldHeight:
		r.Height = value
		r.Recalculate()
	case FieldQuantity:
		r.Quantity = value
	case FieldIsDeduction:
		b, ok := value.(bool)
		if !ok {
			return &ValidationError{Field: field, Message: "must be true or false"}
		}
		r.IsDeduction = b
	default:
		return &ValidationError{Field: field, Message: "unknown detail row field"}
	}
	AggregateGroup(g)
	return c.scheduleLocked()
}

// AddDetailRow appends an empty measurement row to a component.
func (c *Controller) AddDetailRow(groupID string) (DetailRow, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, err := c.groupLocked(groupID)
	if err != nil {
		return DetailRow{}, err
	}
	row := NewDetailRow(g.Index)
	g.Rows = append(g.Rows, row)
	AggregateGroup(g)
	return row, c.scheduleLocked()
}

// InsertDetailRows inserts pasted rows at position at (clamped to the
// group's bounds).
func (c *Controller) InsertDetailRows(groupID string, at int, rows []DetailRow) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, err := c.groupLocked(groupID)
	if err != nil {
		return err
	}
	at = max(0, min(at, len(g.Rows)))
	ins := make([]DetailRow, len(rows))
	for i, r := range rows {
		if r.ID == "" {
			r.ID = NewRowID()
		}
		r.GroupIndex = g.Index
		ins[i] = r
	}
	g.Rows = slices.Insert(g.Rows, at, ins...)
	AggregateGroup(g)
	return c.scheduleLocked()
}

// DeleteDetailRow removes a measurement row.
func (c *Controller) DeleteDetailRow(groupID, rowID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, err := c.groupLocked(groupID)
	if err != nil {
		return err
	}
	i := findRow(g.Rows, rowID)
	if i < 0 {
		return &NotFoundError{Kind: "detail row", Name: rowID}
	}
	g.Rows = slices.Delete(g.Rows, i, i+1)
	AggregateGroup(g)
	return c.scheduleLocked()
}

// ToggleDeduction flips a row between addition and deduction.
func (c *Controller) ToggleDeduction(groupID, rowID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, err := c.groupLocked(groupID)
	if err != nil {
		return err
	}
	i := findRow(g.Rows, rowID)
	if i < 0 {
		return &NotFoundError{Kind: "detail row", Name: rowID}
	}
	g.Rows[i].IsDeduction = !g.Rows[i].IsDeduction
	AggregateGroup(g)
	return c.scheduleLocked()
}

// AvailableComponents lists template components not yet on the floor.
func (c *Controller) AvailableComponents() ([]ComponentGroup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readyLocked(); err != nil {
		return nil, err
	}
	tmpl, err := c.sources.Templates.DefaultComponents(CategoryForFloor(c.current))
	if err != nil {
		return nil, fmt.Errorf("default components: %w", err)
	}
	var out []ComponentGroup
	for _, t := range tmpl {
		if FindGroupByName(c.quantity, t.Name) < 0 {
			out = append(out, t)
		}
	}
	return out, nil
}

// AddComponent appends the named template component to the floor.
func (c *Controller) AddComponent(name string) (ComponentGroup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readyLocked(); err != nil {
		return ComponentGroup{}, err
	}
	tmpl, err := c.sources.Templates.DefaultComponents(CategoryForFloor(c.current))
	if err != nil {
		return ComponentGroup{}, fmt.Errorf("default components: %w", err)
	}
	i := FindGroupByName(tmpl, name)
	if i < 0 {
		return ComponentGroup{}, &NotFoundError{Kind: "component template", Name: name}
	}
	if FindGroupByName(c.quantity, name) >= 0 {
		return ComponentGroup{}, &ValidationError{Field: "name", Message: fmt.Sprintf("component %q is already on floor %q", name, c.current)}
	}
	g := tmpl[i]
	g.ID = NewRowID()
	g.Index = len(c.quantity)
	g.Rows = []DetailRow{NewDetailRow(g.Index)}
	g.Quantity = 0
	c.quantity = append(c.quantity, g)
	return g, c.scheduleLocked()
}

// DeleteComponent removes a component with its detail rows and its
// material row.
func (c *Controller) DeleteComponent(groupID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readyLocked(); err != nil {
		return err
	}
	i := FindGroup(c.quantity, groupID)
	if i < 0 {
		return &NotFoundError{Kind: "component", Name: groupID}
	}
	name := c.quantity[i].Name
	c.quantity = slices.Delete(c.quantity, i, i+1)
	reindexGroups(c.quantity)
	if j := FindMaterialRow(c.material, name); j >= 0 {
		c.material = slices.Delete(c.material, j, j+1)
		if err := c.store.SaveMaterial(c.current, c.material); err != nil {
			return err
		}
	}
	return c.scheduleLocked()
}

func (c *Controller) materialRowLocked(rowID string) (*MaterialGroupRow, error) {
	if err := c.readyLocked(); err != nil {
		return nil, err
	}
	for i := range c.material {
		if c.material[i].ID == rowID {
			return &c.material[i], nil
		}
	}
	return nil, &NotFoundError{Kind: "material row", Name: rowID}
}

// commitMaterialLocked writes the edited material grid through to the
// store and picks up the re-allocated expenses.
func (c *Controller) commitMaterialLocked() error {
	if err := c.store.SaveMaterial(c.current, c.material); err != nil {
		return err
	}
	snap, _, err := c.store.Snapshot(c.current)
	if err != nil {
		return err
	}
	c.expense = snap.Expense
	return nil
}

// EditMaterialCell applies one cell edit reported by the material grid. An
// empty childID addresses the component row itself.
func (c *Controller) EditMaterialCell(rowID, childID, field string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, err := c.materialRowLocked(rowID)
	if err != nil {
		return err
	}

	if childID == "" {
		switch field {
		case FieldLabourRate:
			v, ok := ParseNumber(value)
			if !ok || v < 0 {
				return &ValidationError{Field: field, Message: "must be a non-negative number"}
			}
			r.LabourRate = v
		case FieldRemarks:
			r.Remarks = fmt.Sprint(value)
		default:
			return &ValidationError{Field: field, Message: "unknown component field"}
		}
		RecalculateGroup(r)
		return c.commitMaterialLocked()
	}

	j := -1
	for i := range r.Materials {
		if r.Materials[i].ID == childID {
			j = i
			break
		}
	}
	if j < 0 {
		return &NotFoundError{Kind: "material", Name: childID}
	}
	m := &r.Materials[j]
	switch field {
	case FieldMaterial:
		catalog, err := c.sources.Catalog.MaterialCatalog()
		if err != nil {
			return fmt.Errorf("material catalog: %w", err)
		}
		entry, err := FindCatalogMaterial(catalog, fmt.Sprint(value))
		if err != nil {
			return err
		}
		m.Material = entry.Material
		m.CatalogID = entry.ID
		m.MaterialRate = entry.DefaultRate
		m.Wastage = entry.Wastage
		m.UOM = entry.Unit
	case FieldConsumptionRate, FieldWastage, FieldMaterialRate:
		v, ok := ParseNumber(value)
		if !ok || v < 0 {
			return &ValidationError{Field: field, Message: "must be a non-negative number"}
		}
		switch field {
		case FieldConsumptionRate:
			m.ConsumptionRate = v
		case FieldWastage:
			m.Wastage = v
		default:
			m.MaterialRate = v
		}
	case FieldRemarks:
		m.Remarks = fmt.Sprint(value)
	default:
		return &ValidationError{Field: field, Message: "unknown material field"}
	}
	RecalculateGroup(r)
	return c.commitMaterialLocked()
}

// AddMaterial appends a catalog material to a component's breakdown.
func (c *Controller) AddMaterial(rowID, material string, consumptionRate float64) (MaterialChildRow, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, err := c.materialRowLocked(rowID)
	if err != nil {
		return MaterialChildRow{}, err
	}
	catalog, err := c.sources.Catalog.MaterialCatalog()
	if err != nil {
		return MaterialChildRow{}, fmt.Errorf("material catalog: %w", err)
	}
	entry, err := FindCatalogMaterial(catalog, material)
	if err != nil {
		return MaterialChildRow{}, err
	}
	child := NewCatalogChild(entry, consumptionRate, r.Volume)
	r.Materials = append(r.Materials, child)
	RecalculateGroup(r)
	return child, c.commitMaterialLocked()
}

// DeleteMaterial removes one material from a component's breakdown.
func (c *Controller) DeleteMaterial(rowID, childID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, err := c.materialRowLocked(rowID)
	if err != nil {
		return err
	}
	j := slices.IndexFunc(r.Materials, func(m MaterialChildRow) bool { return m.ID == childID })
	if j < 0 {
		return &NotFoundError{Kind: "material", Name: childID}
	}
	r.Materials = slices.Delete(r.Materials, j, j+1)
	RecalculateGroup(r)
	return c.commitMaterialLocked()
}

// EditLabourRate sets the labour rate of a component's material row.
func (c *Controller) EditLabourRate(rowID string, rate float64) error {
	return c.EditMaterialCell(rowID, "", FieldLabourRate, rate)
}

// EditPercent changes one indirect expense percentage of the current floor.
func (c *Controller) EditPercent(index int, percent float64) (ExpenseSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readyLocked(); err != nil {
		return ExpenseSummary{}, err
	}
	exp, err := c.store.SetPercent(c.current, index, percent)
	if err != nil {
		return ExpenseSummary{}, err
	}
	cp := exp
	c.expense = &cp
	return exp, nil
}

type copyRequest struct {
	Source  string   `json:"source"`
	Targets []string `json:"targets"`
}

func (r copyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Source, validation.Required.Error("select a source floor")),
		validation.Field(&r.Targets,
			validation.Required.Error("select at least one target floor"),
			validation.Each(validation.Required),
			validation.By(func(any) error {
				if slices.Contains(r.Targets, r.Source) {
					return validation.NewError("validation_copy_self", "source floor cannot be a target")
				}
				return nil
			}),
		),
	)
}

// Copy clones the source floor's quantity and material layers into each
// target, overwriting them. If the current floor is a target its display
// is reloaded from the new cache.
func (c *Controller) Copy(source string, targets []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := (copyRequest{Source: source, Targets: targets}).Validate(); err != nil {
		return validationFromOzzo(err)
	}
	if c.state == FloorReady && c.current == source {
		c.cancelPendingLocked()
		if err := c.flushLocked(); err != nil {
			return err
		}
	}
	if !c.store.HasQuantity(source) {
		return &ValidationError{Field: "source", Message: fmt.Sprintf("floor %q has no quantity data to copy", source)}
	}

	for _, t := range targets {
		if err := c.store.CopyFloor(source, t); err != nil {
			return fmt.Errorf("copy %q to %q: %w", source, t, err)
		}
		log.Printf("lifecycle: copied floor %q to %q", source, t)
	}

	if c.state == FloorReady && slices.Contains(targets, c.current) {
		c.cancelPendingLocked()
		c.quantityDirty = false
		return c.reloadLocked()
	}
	return nil
}

// SaveableQuantitySnapshot flushes the current floor and returns every
// floor's quantity grid for persistence.
func (c *Controller) SaveableQuantitySnapshot() (map[string][]ComponentGroup, error) {
	if err := c.Flush(); err != nil {
		return nil, err
	}
	return c.store.QuantitySnapshot()
}

// SaveableMaterialSnapshot flushes the current floor and returns every
// floor's material grid and allocation for persistence.
func (c *Controller) SaveableMaterialSnapshot() (map[string]FloorMaterials, error) {
	if err := c.Flush(); err != nil {
		return nil, err
	}
	return c.store.MaterialSnapshot()
}

// Save persists every floor and reloads the caches from what was stored.
func (c *Controller) Save(ctx context.Context) error {
	if c.remote == nil {
		return &FatalStateError{Reason: "no remote store configured"}
	}
	quantity, err := c.SaveableQuantitySnapshot()
	if err != nil {
		return err
	}
	material, err := c.SaveableMaterialSnapshot()
	if err != nil {
		return err
	}
	id := c.EstimationID()
	if id == "" {
		return &ValidationError{Field: "estimation", Message: "no estimation loaded"}
	}
	if err := c.remote.SaveAll(ctx, id, quantity, material); err != nil {
		return &TransientIOError{Op: "save", Err: err}
	}
	return c.Refresh(ctx, id)
}

// ExportProjection flushes the editor and returns the export view of one
// cached floor.
func (c *Controller) ExportProjection(floor, title string, now time.Time) (ExportData, error) {
	if err := c.Flush(); err != nil {
		return ExportData{}, err
	}
	return c.exportFloor(floor, title, now)
}

// ExportAll projects every cached floor that has quantity data, in floor
// order.
func (c *Controller) ExportAll(title string, now time.Time) ([]ExportData, error) {
	if err := c.Flush(); err != nil {
		return nil, err
	}
	var out []ExportData
	for _, floor := range c.store.Floors() {
		if !c.store.HasQuantity(floor) {
			continue
		}
		data, err := c.exportFloor(floor, title, now)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func (c *Controller) exportFloor(floor, title string, now time.Time) (ExportData, error) {
	if !c.store.HasQuantity(floor) {
		return ExportData{}, &NotFoundError{Kind: "floor", Name: floor}
	}
	if _, err := c.store.MaterialRows(floor); err != nil {
		return ExportData{}, err
	}
	snap, _, err := c.store.Snapshot(floor)
	if err != nil {
		return ExportData{}, err
	}
	return BuildExportData(title, snap, now), nil
}

// Floors lists the cached floors in display order.
func (c *Controller) Floors() []string {
	return c.store.Floors()
}
