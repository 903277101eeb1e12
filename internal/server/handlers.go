package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/image-effects-mcp/internal/document"
	"github.com/ironsheep/image-effects-mcp/internal/effects"
	"github.com/ironsheep/image-effects-mcp/internal/history"
	"github.com/ironsheep/image-effects-mcp/internal/imaging"
	"github.com/ironsheep/image-effects-mcp/internal/pixel"
)

// maxCanvasSide bounds canvas_new dimensions.
const maxCanvasSide = 16384

var errNoCanvas = errors.New("no canvas open: call canvas_open or canvas_new first")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "canvas_open", "effect_apply").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	switch name {
	// Canvas
	case "canvas_open":
		return s.handleCanvasOpen(args)
	case "canvas_new":
		return s.handleCanvasNew(args)
	case "canvas_info":
		return s.handleCanvasInfo(args)
	case "canvas_save":
		return s.handleCanvasSave(args)
	case "canvas_preview":
		return s.handleCanvasPreview(args)
	case "canvas_sample_color":
		return s.handleCanvasSampleColor(args)
	case "canvas_histogram":
		return s.handleCanvasHistogram(args)

	// Layers
	case "layer_add":
		return s.handleLayerAdd(args)
	case "layer_select":
		return s.handleLayerSelect(args)

	// Effects
	case "effect_list":
		return s.registry.Describe(), nil
	case "effect_apply":
		return s.handleEffectApply(ctx, args)

	// History
	case "history_list":
		return s.handleHistoryList(args)
	case "history_undo":
		return s.handleHistoryStep(args, s.coord.Undo, history.ErrNothingToUndo)
	case "history_redo":
		return s.handleHistoryStep(args, s.coord.Redo, history.ErrNothingToRedo)
	case "history_jump":
		return s.handleHistoryJump(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// rectArg is a region in tool arguments and results. X2 and Y2 are exclusive.
type rectArg struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (r rectArg) rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

func toRectArg(r image.Rectangle) *rectArg {
	if r.Empty() {
		return nil
	}
	return &rectArg{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// document returns the open canvas.
func (s *Server) document() (*document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, errNoCanvas
	}
	return s.doc, nil
}

// setDocument replaces the open canvas and restarts history from base.
func (s *Server) setDocument(doc *document.Document, path string, base history.Record) {
	s.mu.Lock()
	s.doc = doc
	s.path = path
	s.mu.Unlock()

	s.coord.ResetHistory(base)
	s.inv.Notify(doc.CanvasBounds())
}

// === Canvas Handlers ===

type layerInfo struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Hidden   bool   `json:"hidden"`
	Active   bool   `json:"active"`
	Checksum string `json:"checksum"`
}

type canvasInfo struct {
	Path           string             `json:"path,omitempty"`
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	CurrentLayer   int                `json:"current_layer"`
	Layers         []layerInfo        `json:"layers"`
	HistoryPointer int                `json:"history_pointer"`
	HistoryLength  int                `json:"history_length"`
	CanUndo        bool               `json:"can_undo"`
	CanRedo        bool               `json:"can_redo"`
	HistoryBytes   int                `json:"history_bytes"`
	File           *imaging.ImageInfo `json:"file,omitempty"`
}

func (s *Server) describeCanvas(doc *document.Document) *canvasInfo {
	s.mu.Lock()
	path := s.path
	s.mu.Unlock()

	h := s.coord.History()
	info := &canvasInfo{
		Path:           path,
		Width:          doc.Width(),
		Height:         doc.Height(),
		CurrentLayer:   doc.CurrentLayer(),
		HistoryPointer: h.Pointer(),
		HistoryLength:  h.Len(),
		CanUndo:        h.CanUndo(),
		CanRedo:        h.CanRedo(),
		HistoryBytes:   h.Bytes(),
	}
	for i, l := range doc.Layers() {
		info.Layers = append(info.Layers, layerInfo{
			Index:    i,
			Name:     l.Name(),
			Hidden:   l.Hidden(),
			Active:   i == info.CurrentLayer,
			Checksum: l.Buffer().ChecksumHex(),
		})
	}
	return info
}

type canvasOpenArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleCanvasOpen(args json.RawMessage) (interface{}, error) {
	var a canvasOpenArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	fileInfo, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	buf, err := s.cache.LoadBuffer(a.Path)
	if err != nil {
		return nil, err
	}

	doc := document.FromBuffer(buf)
	s.setDocument(doc, a.Path, openImageRecord)

	info := s.describeCanvas(doc)
	info.File = fileInfo
	return info, nil
}

type canvasNewArgs struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Color  string `json:"color"`
}

func (s *Server) handleCanvasNew(args json.RawMessage) (interface{}, error) {
	var a canvasNewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Width <= 0 || a.Height <= 0 || a.Width > maxCanvasSide || a.Height > maxCanvasSide {
		return nil, fmt.Errorf("canvas size %dx%d out of range 1..%d", a.Width, a.Height, maxCanvasSide)
	}
	fill, err := imaging.ParseColor(a.Color)
	if err != nil {
		return nil, err
	}

	doc := document.New(a.Width, a.Height, fill)
	s.setDocument(doc, "", newImageRecord)
	return s.describeCanvas(doc), nil
}

func (s *Server) handleCanvasInfo(json.RawMessage) (interface{}, error) {
	doc, err := s.document()
	if err != nil {
		return nil, err
	}
	return s.describeCanvas(doc), nil
}

type canvasSaveArgs struct {
	Path string `json:"path"`
}

type canvasSaveResult struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Checksum string `json:"checksum"`
}

func (s *Server) handleCanvasSave(args json.RawMessage) (interface{}, error) {
	var a canvasSaveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	doc, err := s.document()
	if err != nil {
		return nil, err
	}
	if a.Path == "" {
		s.mu.Lock()
		a.Path = s.path
		s.mu.Unlock()
	}
	if a.Path == "" {
		return nil, errors.New("path is required for a canvas that was never saved")
	}

	flat := doc.Flatten()
	if err := s.cache.Save(flat, a.Path); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.path = a.Path
	s.mu.Unlock()

	return &canvasSaveResult{
		Path:     a.Path,
		Format:   imaging.FormatFromPath(a.Path),
		Width:    flat.Width(),
		Height:   flat.Height(),
		Checksum: flat.ChecksumHex(),
	}, nil
}

type canvasPreviewArgs struct {
	Region string   `json:"region"`
	Rect   *rectArg `json:"rect"`
	Scale  float64  `json:"scale"`
	Layer  *int     `json:"layer"`
}

func (s *Server) handleCanvasPreview(args json.RawMessage) (interface{}, error) {
	var a canvasPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	doc, err := s.document()
	if err != nil {
		return nil, err
	}

	var img *pixel.Buffer
	if a.Layer != nil {
		layers := doc.Layers()
		if *a.Layer < 0 || *a.Layer >= len(layers) {
			return nil, fmt.Errorf("%w: %d", document.ErrLayerIndex, *a.Layer)
		}
		img = layers[*a.Layer].Buffer()
	} else {
		img = doc.Flatten()
	}

	var r image.Rectangle
	switch {
	case a.Rect != nil:
		r = a.Rect.rect()
		if r.Empty() {
			return nil, fmt.Errorf("invalid rect %v: x1 must be < x2, y1 must be < y2", r)
		}
	case a.Region == "dirty":
		r = s.takeDamage().Intersect(img.Bounds())
		if r.Empty() {
			return map[string]interface{}{"unchanged": true}, nil
		}
	default:
		r, err = imaging.NamedRegion(img.Bounds(), a.Region)
		if err != nil {
			return nil, err
		}
	}

	return imaging.Crop(img, r, a.Scale)
}

type canvasSampleColorArgs struct {
	X      int                    `json:"x"`
	Y      int                    `json:"y"`
	Points []imaging.LabeledPoint `json:"points"`
}

func (s *Server) handleCanvasSampleColor(args json.RawMessage) (interface{}, error) {
	var a canvasSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	doc, err := s.document()
	if err != nil {
		return nil, err
	}
	buf := doc.ActiveLayer().Buffer()

	if len(a.Points) > 0 {
		return imaging.SampleColorsMulti(buf, a.Points)
	}
	return imaging.SampleColor(buf, a.X, a.Y)
}

type canvasHistogramArgs struct {
	Rect     *rectArg `json:"rect"`
	Dominant int      `json:"dominant"`
	Chart    string   `json:"chart"`
}

type histogramResult struct {
	Region         rectArg                  `json:"region"`
	Pixels         int                      `json:"pixels"`
	Low            imaging.ColorResult      `json:"low"`
	Median         imaging.ColorResult      `json:"median"`
	High           imaging.ColorResult      `json:"high"`
	Mean           imaging.ColorResult      `json:"mean"`
	AutoLevelValid bool                     `json:"auto_level_valid"`
	Dominant       []imaging.ColorFrequency `json:"dominant,omitempty"`
	Chart          *imaging.CropResult      `json:"chart,omitempty"`
}

var chartChannels = map[string]int{"blue": 0, "green": 1, "red": 2}

func (s *Server) handleCanvasHistogram(args json.RawMessage) (interface{}, error) {
	var a canvasHistogramArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	doc, err := s.document()
	if err != nil {
		return nil, err
	}
	buf := doc.ActiveLayer().Buffer()

	r := buf.Bounds()
	if a.Rect != nil {
		r = a.Rect.rect().Intersect(r)
	}
	if r.Empty() {
		return nil, errors.New("histogram region is empty")
	}

	h := pixel.NewHistogram()
	h.UpdateHistogramParallel(buf, r)

	res := &histogramResult{
		Region:         *toRectArg(r),
		Pixels:         h.Total(),
		Low:            imaging.NewColorResult(h.Percentile(pixel.DefaultAutoLevelClip)),
		Median:         imaging.NewColorResult(h.Percentile(0.5)),
		High:           imaging.NewColorResult(h.Percentile(1 - pixel.DefaultAutoLevelClip)),
		Mean:           imaging.NewColorResult(h.Mean()),
		AutoLevelValid: h.MakeLevelsAuto().Valid(),
	}
	if a.Dominant > 0 {
		res.Dominant = imaging.DominantColors(buf, r, a.Dominant)
	}
	if a.Chart != "" {
		c, ok := chartChannels[a.Chart]
		if !ok {
			return nil, fmt.Errorf("unknown chart channel: %s", a.Chart)
		}
		chart, err := imaging.Crop(h.ChannelImage(c), image.Rectangle{}, 1)
		if err != nil {
			return nil, err
		}
		res.Chart = chart
	}
	return res, nil
}

// === Layer Handlers ===

type layerAddArgs struct {
	Name string `json:"name"`
}

func (s *Server) handleLayerAdd(args json.RawMessage) (interface{}, error) {
	var a layerAddArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	doc, err := s.document()
	if err != nil {
		return nil, err
	}
	doc.AddLayer(a.Name)
	return s.describeCanvas(doc), nil
}

type layerSelectArgs struct {
	Index  int   `json:"index"`
	Hidden *bool `json:"hidden"`
}

func (s *Server) handleLayerSelect(args json.RawMessage) (interface{}, error) {
	var a layerSelectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	doc, err := s.document()
	if err != nil {
		return nil, err
	}
	if a.Hidden != nil {
		if err := doc.SetLayerHidden(a.Index, *a.Hidden); err != nil {
			return nil, err
		}
		s.inv.Notify(doc.CanvasBounds())
	} else if err := doc.SetCurrentLayer(a.Index); err != nil {
		return nil, err
	}
	return s.describeCanvas(doc), nil
}

// === Effect Handlers ===

type effectApplyArgs struct {
	Effect string         `json:"effect"`
	Params map[string]any `json:"params"`
	ROIs   []rectArg      `json:"rois"`
}

type effectApplyResult struct {
	Effect        string   `json:"effect"`
	Applied       bool     `json:"applied"`
	Skipped       bool     `json:"skipped,omitempty"`
	Cancelled     bool     `json:"cancelled,omitempty"`
	Degenerate    bool     `json:"degenerate,omitempty"`
	HistoryPushed bool     `json:"history_pushed"`
	HistoryIndex  int      `json:"history_index"`
	Invalidated   *rectArg `json:"invalidated,omitempty"`
	Checksum      string   `json:"checksum,omitempty"`
	DurationMs    float64  `json:"duration_ms"`
}

func (s *Server) handleEffectApply(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a effectApplyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	doc, err := s.document()
	if err != nil {
		return nil, err
	}

	e, err := s.registry.New(a.Effect)
	if err != nil {
		return nil, err
	}
	if err := effects.Configure(e, a.Params); err != nil {
		return nil, err
	}

	var rois []image.Rectangle
	for _, r := range a.ROIs {
		rois = append(rois, r.rect())
	}

	res, err := s.coord.ApplyEffect(ctx, e, doc, rois)
	if err != nil {
		return nil, err
	}

	return &effectApplyResult{
		Effect:        res.Effect,
		Applied:       res.Applied,
		Skipped:       res.Skipped,
		Cancelled:     res.Cancelled,
		Degenerate:    res.Degenerate,
		HistoryPushed: res.HistoryPushed,
		HistoryIndex:  res.HistoryIndex,
		Invalidated:   toRectArg(res.Invalidated),
		Checksum:      res.Checksum,
		DurationMs:    float64(res.Duration.Microseconds()) / 1000,
	}, nil
}

// === History Handlers ===

type historyEntry struct {
	Index   int      `json:"index"`
	ID      uint64   `json:"id"`
	Icon    string   `json:"icon"`
	Label   string   `json:"label"`
	State   string   `json:"state"`
	Current bool     `json:"current"`
	Region  *rectArg `json:"region,omitempty"`
}

type historyListResult struct {
	Pointer int            `json:"pointer"`
	CanUndo bool           `json:"can_undo"`
	CanRedo bool           `json:"can_redo"`
	Bytes   int            `json:"bytes"`
	Records []historyEntry `json:"records"`
}

func (s *Server) listHistory() *historyListResult {
	h := s.coord.History()
	records := h.Records()
	pointer := h.Pointer()

	res := &historyListResult{
		Pointer: pointer,
		CanUndo: h.CanUndo(),
		CanRedo: h.CanRedo(),
		Bytes:   h.Bytes(),
		Records: make([]historyEntry, 0, len(records)),
	}
	for i, r := range records {
		res.Records = append(res.Records, historyEntry{
			Index:   i,
			ID:      r.ID,
			Icon:    r.Icon,
			Label:   r.Label,
			State:   r.State.String(),
			Current: i == pointer,
			Region:  toRectArg(r.Bounds()),
		})
	}
	return res
}

func (s *Server) handleHistoryList(json.RawMessage) (interface{}, error) {
	if _, err := s.document(); err != nil {
		return nil, err
	}
	return s.listHistory(), nil
}

type historyStepResult struct {
	Changed bool     `json:"changed"`
	Reason  string   `json:"reason,omitempty"`
	Label   string   `json:"label,omitempty"`
	Region  *rectArg `json:"region,omitempty"`
	Pointer int      `json:"pointer"`
}

// handleHistoryStep runs one Undo or Redo. Hitting either end of the
// history is reported in the result rather than as an error.
func (s *Server) handleHistoryStep(_ json.RawMessage, step func() (history.Record, error), boundary error) (interface{}, error) {
	if _, err := s.document(); err != nil {
		return nil, err
	}

	r, err := step()
	switch {
	case errors.Is(err, boundary):
		return &historyStepResult{Reason: err.Error(), Pointer: s.coord.History().Pointer()}, nil
	case err != nil:
		return nil, err
	}
	return &historyStepResult{
		Changed: true,
		Label:   r.Label,
		Region:  toRectArg(r.Bounds()),
		Pointer: s.coord.History().Pointer(),
	}, nil
}

type historyJumpArgs struct {
	Index int `json:"index"`
}

type historyJumpResult struct {
	Moved   int                `json:"moved"`
	History *historyListResult `json:"history"`
}

func (s *Server) handleHistoryJump(args json.RawMessage) (interface{}, error) {
	var a historyJumpArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if _, err := s.document(); err != nil {
		return nil, err
	}

	moved, err := s.coord.JumpTo(a.Index)
	if err != nil {
		return nil, err
	}
	return &historyJumpResult{Moved: len(moved), History: s.listHistory()}, nil
}
