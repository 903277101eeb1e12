package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// rectSchema describes a region argument. x2 and y2 are exclusive.
func rectSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer", "description": "Left edge X coordinate (0-based)"},
			"y1": map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate (0-based)"},
			"x2": map[string]interface{}{"type": "integer", "description": "Right edge X coordinate (exclusive)"},
			"y2": map[string]interface{}{"type": "integer", "description": "Bottom edge Y coordinate (exclusive)"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

func emptySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Canvas
		{
			Name:        "canvas_open",
			Description: "Open an image file (PNG, JPEG, GIF, BMP, TIFF, WebP) as the canvas. Discards the current canvas and starts a new history with an \"Open Image\" entry.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "canvas_new",
			Description: "Create a blank canvas filled with a color. Discards the current canvas and starts a new history with a \"New Image\" entry.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Canvas width in pixels (1-16384)",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Canvas height in pixels (1-16384)",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Fill color as #RGB, #RRGGBB, #RRGGBBAA or \"transparent\". Default white",
						"default":     "#FFFFFF",
					},
				},
				"required": []string{"width", "height"},
			},
		},
		{
			Name:        "canvas_info",
			Description: "Report the canvas size, its layers with checksums, and the history position.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "canvas_save",
			Description: "Flatten the visible layers and save the result. The format follows the file extension (png, jpg, gif, tif, bmp).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Destination path. Defaults to the path the canvas was opened from or last saved to",
					},
				},
			},
		},
		{
			Name:        "canvas_preview",
			Description: "Return a region of the canvas as base64-encoded PNG. Use region \"dirty\" to see only what changed since the last dirty preview.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"region": map[string]interface{}{
						"type":        "string",
						"description": "Named region. Ignored when rect is given",
						"enum": []string{
							"full", "dirty",
							"top-left", "top-right", "bottom-left", "bottom-right",
							"top-half", "bottom-half", "left-half", "right-half", "center",
						},
						"default": "full",
					},
					"rect": rectSchema("Explicit region to preview"),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
					"layer": map[string]interface{}{
						"type":        "integer",
						"description": "Preview a single layer by index instead of the flattened canvas",
					},
				},
			},
		},
		{
			Name:        "canvas_sample_color",
			Description: "Get the color at one or more pixels of the active layer in hex, RGB, RGBA and HSL.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based)",
					},
					"points": map[string]interface{}{
						"type":        "array",
						"description": "Sample several points at once instead of x/y",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string"},
							},
							"required": []string{"x", "y"},
						},
					},
				},
			},
		},
		{
			Name:        "canvas_histogram",
			Description: "Per-channel statistics of the active layer: 0.5%/50%/99.5% percentiles, mean, and whether auto-level would change anything.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"rect": rectSchema("Region to analyze. Default whole layer"),
					"dominant": map[string]interface{}{
						"type":        "integer",
						"description": "Also return this many dominant colors",
						"default":     0,
					},
					"chart": map[string]interface{}{
						"type":        "string",
						"description": "Also return a 256x256 bar chart of one channel as PNG",
						"enum":        []string{"red", "green", "blue"},
					},
				},
			},
		},

		// Layers
		{
			Name:        "layer_add",
			Description: "Add a transparent layer on top of the canvas and make it active.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Layer name. Default \"Layer N\"",
					},
				},
			},
		},
		{
			Name:        "layer_select",
			Description: "Make a layer active for editing, or show/hide it when hidden is given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Layer index, 0 = bottom",
					},
					"hidden": map[string]interface{}{
						"type":        "boolean",
						"description": "Hide (true) or show (false) the layer instead of selecting it",
					},
				},
				"required": []string{"index"},
			},
		},

		// Effects
		{
			Name:        "effect_list",
			Description: "List the available effects with their category and default parameters.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "effect_apply",
			Description: "Apply an effect to the active layer, optionally limited to regions. Each successful application adds one undoable history entry.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"effect": map[string]interface{}{
						"type":        "string",
						"description": "Effect ID from effect_list (e.g., \"sepia\", \"brightness-contrast\")",
					},
					"params": map[string]interface{}{
						"type":        "object",
						"description": "Effect parameters by name; omitted ones keep their defaults",
					},
					"rois": map[string]interface{}{
						"type":        "array",
						"description": "Regions to affect. Default whole canvas",
						"items":       rectSchema("Region of interest"),
					},
				},
				"required": []string{"effect"},
			},
		},

		// History
		{
			Name:        "history_list",
			Description: "List the history entries with their icon, label and undo/redo state.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "history_undo",
			Description: "Undo the most recent applied entry.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "history_redo",
			Description: "Redo the next undone entry.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "history_jump",
			Description: "Undo or redo step by step until the given entry is the current one.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Target history index, 0 = the base entry",
					},
				},
				"required": []string{"index"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
