package domain

// UnitKind identifies the dataset a TextUnit was synthesized from.
type UnitKind string

const (
	UnitKindOccupation UnitKind = "occupation"
	UnitKindCurriculum UnitKind = "curriculum"
	UnitKindAdmission  UnitKind = "admission"
)

// TextUnit is one retrievable passage. Only Text is embedded; the other
// fields identify the unit and give it a stable order.
type TextUnit struct {
	ID       string   `json:"id"`
	Kind     UnitKind `json:"kind"`
	Subject  string   `json:"subject"`
	Position int      `json:"position"`
	Text     string   `json:"text"`
}
