// Package series reads REAL8FrequencySeries objects, the LIGO_LW
// containers that carry power spectral densities, from decoded documents.
//
// A series container holds an "epoch" Time of Type GPS, an "f0" real_8
// Param, optionally an "instrument" lstring Param, and one real_8 Array of
// shape [n][2] whose first Dim carries the frequency spacing in Scale.
// Column 0 of the array is frequency and column 1 is the sample value.
package series

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/ligolw/core/errors"
	"github.com/FocuswithJustin/ligolw/core/ligolw"
	"github.com/FocuswithJustin/ligolw/core/xml"
)

// ContainerName is the LIGO_LW Name of a frequency series container.
const ContainerName = "REAL8FrequencySeries"

// GPS is a GPS time split into whole seconds and nanoseconds.
type GPS struct {
	Seconds     int64
	Nanoseconds int32
}

// ParseGPS parses "seconds[.fraction]" with at most nine fractional digits.
func ParseGPS(s string) (GPS, error) {
	s = strings.TrimSpace(s)
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" || len(frac) > 9 {
		return GPS{}, errors.NewValidation("epoch", fmt.Sprintf("incomprehensible GPS time %q", s))
	}
	sec, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || sec < 0 {
		return GPS{}, errors.NewValidation("epoch", fmt.Sprintf("incomprehensible GPS time %q", s))
	}
	var ns int64
	if frac != "" {
		ns, err = strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 32)
		if err != nil || ns < 0 {
			return GPS{}, errors.NewValidation("epoch", fmt.Sprintf("incomprehensible GPS time %q", s))
		}
	}
	return GPS{Seconds: sec, Nanoseconds: int32(ns)}, nil
}

// String formats g as seconds with nine fractional digits.
func (g GPS) String() string {
	return fmt.Sprintf("%d.%09d", g.Seconds, g.Nanoseconds)
}

// FrequencySeries is a uniformly sampled frequency-domain series.
type FrequencySeries struct {
	Name       string
	Instrument string
	Epoch      GPS
	F0         float64
	DeltaF     float64
	// FrequencyUnit is the Unit of the frequency Dim.
	FrequencyUnit string
	Data          []float64
}

// Frequency returns the frequency of sample i.
func (s *FrequencySeries) Frequency(i int) float64 {
	return s.F0 + float64(i)*s.DeltaF
}

// Decode builds a FrequencySeries from a series container element. The
// instrument Param is optional here; PSDs requires it.
func Decode(elem *xml.Node) (*FrequencySeries, error) {
	if elem == nil {
		return nil, errors.NewNotFound("LIGO_LW", ContainerName)
	}

	a, err := ligolw.DecodeArray(ligolw.GetArray(elem, ""))
	if err != nil {
		return nil, errors.Wrap(err, "series array")
	}
	defer a.Release()

	epoch, err := ligolw.DecodeTime(ligolw.GetTime(elem, "epoch"))
	if err != nil {
		return nil, errors.Wrap(err, "series epoch")
	}
	if epoch.Type != "GPS" {
		return nil, errors.NewMalformed("Time", epoch.Name, "Type", fmt.Sprintf("epoch Type is %q, want \"GPS\"", epoch.Type))
	}
	gps, err := ParseGPS(epoch.Value)
	if err != nil {
		return nil, err
	}

	if len(a.Dims) != 2 {
		return nil, errors.NewMalformed("Array", a.Name, "", fmt.Sprintf("array has %d dimensions, want 2", len(a.Dims)))
	}
	if a.Type != ligolw.TypeReal8 {
		return nil, errors.NewMalformed("Array", a.Name, "Type", fmt.Sprintf("array type is %v, want real_8", a.Type))
	}
	if a.Dims[1].N != 2 {
		return nil, errors.NewMalformed("Array", a.Name, "", fmt.Sprintf("second dimension is %d, want 2", a.Dims[1].N))
	}
	deltaF, err := a.Dims[0].ScaleFloat()
	if err != nil {
		return nil, err
	}
	if a.Dims[0].Unit == nil {
		return nil, errors.NewMalformed("Dim", a.Dims[0].Name, "Unit", "missing Unit")
	}

	var f0 float64
	if err := ligolw.ParamAs(ligolw.GetParam(elem, "f0"), ligolw.TypeReal8, &f0); err != nil {
		return nil, errors.Wrap(err, "series f0")
	}

	var instrument string
	if p := ligolw.GetParam(elem, "instrument"); p != nil {
		if err := ligolw.ParamAs(p, ligolw.TypeLString, &instrument); err != nil {
			return nil, errors.Wrap(err, "series instrument")
		}
	}

	values, err := ligolw.ArrayValues[float64](a)
	if err != nil {
		return nil, err
	}
	data := make([]float64, a.Dims[0].N)
	if values != nil {
		for i := range data {
			data[i] = values[2*i+1]
		}
	}

	return &FrequencySeries{
		Name:          a.Name,
		Instrument:    instrument,
		Epoch:         gps,
		F0:            f0,
		DeltaF:        deltaF,
		FrequencyUnit: *a.Dims[0].Unit,
		Data:          data,
	}, nil
}

// PSDs decodes every series container at the depth of the first one found
// below root, keyed by instrument. Every container must name its
// instrument, and no instrument may appear twice.
func PSDs(root *xml.Node) (map[string]*FrequencySeries, error) {
	psds := make(map[string]*FrequencySeries)
	for elem := range ligolw.Containers(root, ContainerName) {
		s, err := Decode(elem)
		if err != nil {
			return nil, err
		}
		if s.Instrument == "" {
			return nil, errors.NewMalformed("LIGO_LW", ContainerName, "", "series has no instrument Param")
		}
		if _, dup := psds[s.Instrument]; dup {
			return nil, errors.NewMalformed("LIGO_LW", ContainerName, "", fmt.Sprintf("duplicate PSD for %s", s.Instrument))
		}
		psds[s.Instrument] = s
	}
	return psds, nil
}
