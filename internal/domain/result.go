package domain

import "encoding/json"

// Vector key names as they appear in persisted computed results. The scoring
// logic that produces them lives upstream; this package only knows that these
// four fields, when present, hold ordered numeric sequences.
const (
	VectorStructure  = "structure"
	VectorEcology    = "ecology"
	VectorPotentialA = "potentialA"
	VectorPotentialB = "potentialB"
)

var VectorKeys = []string{VectorStructure, VectorEcology, VectorPotentialA, VectorPotentialB}

// ResultSet is the scored output of a completed run. Beyond the four named
// vectors the object is opaque: any additional fields the upstream scorer
// emits are preserved verbatim in Extra so they survive a store/export
// round trip.
type ResultSet struct {
	Structure  []float64
	Ecology    []float64
	PotentialA []float64
	PotentialB []float64
	Extra      map[string]json.RawMessage
}

func (r ResultSet) Vector(key string) []float64 {
	switch key {
	case VectorStructure:
		return r.Structure
	case VectorEcology:
		return r.Ecology
	case VectorPotentialA:
		return r.PotentialA
	case VectorPotentialB:
		return r.PotentialB
	default:
		return nil
	}
}

func (r ResultSet) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(r.Extra)+len(VectorKeys))
	for k, v := range r.Extra {
		fields[k] = v
	}

	for _, key := range VectorKeys {
		vec := r.Vector(key)
		if vec == nil {
			continue
		}
		raw, err := json.Marshal(vec)
		if err != nil {
			return nil, err
		}
		fields[key] = raw
	}

	return json.Marshal(fields)
}

func (r *ResultSet) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	out := ResultSet{}
	for key, raw := range fields {
		switch key {
		case VectorStructure, VectorEcology, VectorPotentialA, VectorPotentialB:
			var vec []float64
			if err := json.Unmarshal(raw, &vec); err != nil {
				return err
			}
			switch key {
			case VectorStructure:
				out.Structure = vec
			case VectorEcology:
				out.Ecology = vec
			case VectorPotentialA:
				out.PotentialA = vec
			case VectorPotentialB:
				out.PotentialB = vec
			}
		default:
			if out.Extra == nil {
				out.Extra = map[string]json.RawMessage{}
			}
			out.Extra[key] = raw
		}
	}

	*r = out
	return nil
}
