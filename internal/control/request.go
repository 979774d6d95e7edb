package control

// Request is the decoded shape of any control-socket message. Every
// action reads only the fields it needs; unused fields are simply
// ignored, matching original_source/HoopiPi/IPCServer.cpp's
// cmd.value("key", default) style of tolerant field access (spec §4.I,
// §9 "Duck-typed JSON action dispatch" — a flat struct plays the role of
// the tagged variant the spec describes, since every action's payload
// fields are drawn from one small overlapping vocabulary). Field names
// match the action catalogue in spec §4.I exactly.
type Request struct {
	Action string `json:"action"`

	Slot      int    `json:"slot"`
	ModelPath string `json:"modelPath"`

	Bypass  *bool `json:"bypass"`
	Enabled *bool `json:"enabled"`

	Gain      *float64 `json:"gain"`
	DB        *float64 `json:"db"`
	Threshold *float64 `json:"threshold"`
	Level     *float64 `json:"level"`
	Size      *float64 `json:"size"`
	Seconds   *float64 `json:"seconds"`
	Dry       *float64 `json:"dry"`
	Wet       *float64 `json:"wet"`
	Volume    *float64 `json:"volume"`

	Mode     string `json:"mode"`
	Filename string `json:"filename"`
	Filepath string `json:"filepath"`
}
