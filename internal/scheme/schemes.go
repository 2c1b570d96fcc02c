package scheme

import "hcsgrid/pkg/coords"

// Scheme identifiers of the built-in registry.
const (
	Operetta         = "Operetta"
	IncuCyte         = "IncuCyte"
	MolecularDevices = "MolecularDevices"
	WellSuffix       = "WellSuffix"
	Replicate        = "Replicate"
)

const tiffExt = `\.(?i:tiff?)$`

// builtinSchemes lists the registry in try order. Integer captures are
// capped at nine digits so an oversized number fails to match instead of
// failing to decode.
//
// Keep more specific conventions first: WellSuffix would swallow IncuCyte
// and MolecularDevices names if it came earlier, and Replicate accepts any
// "_<letters><digits>" tail, which includes every WellSuffix name.
func builtinSchemes() []*Scheme {
	return []*Scheme{
		NewScheme(Operetta,
			// r01c01f04p01-ch1sk1fk1fl1.tiff
			mustPattern("plane",
				`^r(?P<row>\d{2})c(?P<column>\d{2})f(?P<field>\d{2})p(?P<plane>\d{2})-ch(?P<channel>\d+)sk\d+fk\d+fl\d+`+tiffExt,
				Field{"row", coords.AxisRow, Int},
				Field{"column", coords.AxisColumn, Int},
				Field{"field", coords.AxisField, Int},
				Field{"plane", coords.AxisPlane, Int},
				Field{"channel", coords.AxisChannel, Token},
			),
			// r01c01f04-ch1sk1fk1fl1.tiff
			mustPattern("flat",
				`^r(?P<row>\d{2})c(?P<column>\d{2})f(?P<field>\d{2})-ch(?P<channel>\d+)sk\d+fk\d+fl\d+`+tiffExt,
				Field{"row", coords.AxisRow, Int},
				Field{"column", coords.AxisColumn, Int},
				Field{"field", coords.AxisField, Int},
				Field{"channel", coords.AxisChannel, Token},
			),
		),
		NewScheme(IncuCyte,
			// MiaPaCa2-PhaseOriginal_A2_1_03d06h40m.tif
			mustPattern("channel",
				`^(?P<treatment>[^_]+)-(?P<channel>[^_\-]+)_(?P<row>[A-Za-z]{1,2})(?P<column>\d{1,2})_(?P<field>\d{1,9})_(?P<elapsed>\d{1,6}d\d{2}h\d{2}m)`+tiffExt,
				Field{"row", coords.AxisRow, RowLetter},
				Field{"column", coords.AxisColumn, Int},
				Field{"field", coords.AxisField, Int},
				Field{"channel", coords.AxisChannel, Token},
				Field{"elapsed", coords.AxisTimepoint, Elapsed},
				Field{"treatment", coords.AxisTreatment, Token},
			),
			// MiaPaCa2_A2_1_03d06h40m.tif
			mustPattern("plain",
				`^(?P<treatment>[^_]+)_(?P<row>[A-Za-z]{1,2})(?P<column>\d{1,2})_(?P<field>\d{1,9})_(?P<elapsed>\d{1,6}d\d{2}h\d{2}m)`+tiffExt,
				Field{"row", coords.AxisRow, RowLetter},
				Field{"column", coords.AxisColumn, Int},
				Field{"field", coords.AxisField, Int},
				Field{"elapsed", coords.AxisTimepoint, Elapsed},
				Field{"treatment", coords.AxisTreatment, Token},
			),
		),
		NewScheme(MolecularDevices,
			// Plate1_B02_s3_w2.TIF, optionally followed by a 36 character acquisition id
			mustPattern("site",
				`^(?P<plate>.+)_(?P<row>[A-Za-z]{1,2})(?P<column>\d{2})_s(?P<field>\d{1,9})_w(?P<channel>\d+)(?:[0-9A-Fa-f\-]{36})?`+tiffExt,
				Field{"row", coords.AxisRow, RowLetter},
				Field{"column", coords.AxisColumn, Int},
				Field{"field", coords.AxisField, Int},
				Field{"channel", coords.AxisChannel, Token},
			),
			// Plate1_B02_w2.TIF
			mustPattern("well",
				`^(?P<plate>.+)_(?P<row>[A-Za-z]{1,2})(?P<column>\d{2})_w(?P<channel>\d+)(?:[0-9A-Fa-f\-]{36})?`+tiffExt,
				Field{"row", coords.AxisRow, RowLetter},
				Field{"column", coords.AxisColumn, Int},
				Field{"channel", coords.AxisChannel, Token},
			),
		),
		NewScheme(WellSuffix,
			// x_A1.tif, sample_H12_t3.tif
			mustPattern("well",
				`^(?P<name>.+)_(?P<row>[A-Pa-p])(?P<column>\d{1,2})(?:_t(?P<timepoint>\d{1,9}))?`+tiffExt,
				Field{"row", coords.AxisRow, RowLetter},
				Field{"column", coords.AxisColumn, Int},
				Field{"timepoint", coords.AxisTimepoint, Int},
			),
		),
		NewScheme(Replicate,
			// sample_rep2.tif, sample_A1.tif
			mustPattern("tagged",
				`^(?P<sample>.+)_[A-Za-z]{0,3}(?P<replicate>\d{1,3})`+tiffExt,
				Field{"replicate", coords.AxisReplicate, Int},
			),
		),
	}
}
