package goes

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The archive lays keys out as
//
//	<product>/<year>/<day-of-year>/<hour>/<filename>
//
// and names files
//
//	OR_<product[sector]>[-M<mode>][C<band>]_G<NN>_s<stamp>_e<stamp>_c<stamp>.nc
//
// where each stamp is year, day of year, hour, minute, second and tenths of
// a second. Everything a query needs is recoverable from the key alone.

// stampLayout covers the 13 whole-second digits of a file name stamp; the
// trailing tenths digit is handled separately because the stamps carry no
// decimal point.
const stampLayout = "2006002150405"

// HourPrefix returns the listing prefix for one archive hour.
func HourPrefix(product string, t time.Time) string {
	return product + t.UTC().Format("/2006/002/15/")
}

// DayPrefix returns the listing prefix for one archive day. Day-scoped
// listing costs one request per calendar day instead of one per hour.
func DayPrefix(product string, t time.Time) string {
	return product + t.UTC().Format("/2006/002/")
}

// EncodeKey builds the canonical object key for a record. The path portion
// is derived from the scan start time, matching how the archive shelves
// files by starting hour.
func EncodeKey(r FileRecord) string {
	seg := r.Product
	switch r.Domain {
	case DomainMesoscale1, DomainMesoscale2:
		seg += string(r.Domain[1])
	}
	if r.Mode > 0 {
		seg += fmt.Sprintf("-M%d", r.Mode)
	}
	if r.Band > 0 {
		seg += fmt.Sprintf("C%02d", r.Band)
	}
	name := "OR_" + seg +
		"_" + r.Satellite.Abbrev() +
		"_" + formatStamp('s', r.Start) +
		"_" + formatStamp('e', r.End) +
		"_" + formatStamp('c', r.Created) + ".nc"
	return HourPrefix(r.Product, r.Start) + name
}

// DecodeKey parses an object key back into a FileRecord. It is the inverse
// of EncodeKey for every field the key encodes; Size and LastModified come
// from the store listing, not the key. Keys that do not follow the naming
// convention fail with ErrMalformedKey.
func DecodeKey(key string) (FileRecord, error) {
	parts := strings.Split(key, "/")
	if len(parts) != 5 {
		return FileRecord{}, fmt.Errorf("%w: %q: want product/year/day/hour/name", ErrMalformedKey, key)
	}
	product := parts[0]
	if len(parts[1]) != 4 || len(parts[2]) != 3 || len(parts[3]) != 2 ||
		!allDigits(parts[1]) || !allDigits(parts[2]) || !allDigits(parts[3]) {
		return FileRecord{}, fmt.Errorf("%w: %q: bad date path", ErrMalformedKey, key)
	}

	name, ok := strings.CutSuffix(parts[4], ".nc")
	if !ok {
		return FileRecord{}, fmt.Errorf("%w: %q: file name does not end in .nc", ErrMalformedKey, key)
	}
	fields := strings.Split(name, "_")
	if len(fields) != 6 || fields[0] != "OR" {
		return FileRecord{}, fmt.Errorf("%w: %q: want OR_<product>_<sat>_s<t>_e<t>_c<t>.nc", ErrMalformedKey, key)
	}

	rec := FileRecord{Key: key, Product: product}

	var err error
	if rec.Satellite, err = satelliteFromAbbrev(fields[2]); err != nil {
		return FileRecord{}, fmt.Errorf("%w: %q: %v", ErrMalformedKey, key, err)
	}
	if rec.Domain, rec.Mode, rec.Band, err = decodeSegment(fields[1], product); err != nil {
		return FileRecord{}, fmt.Errorf("%w: %q: %v", ErrMalformedKey, key, err)
	}
	if rec.Start, err = parseStamp(fields[3], 's'); err != nil {
		return FileRecord{}, fmt.Errorf("%w: %q: %v", ErrMalformedKey, key, err)
	}
	if rec.End, err = parseStamp(fields[4], 'e'); err != nil {
		return FileRecord{}, fmt.Errorf("%w: %q: %v", ErrMalformedKey, key, err)
	}
	if rec.Created, err = parseStamp(fields[5], 'c'); err != nil {
		return FileRecord{}, fmt.Errorf("%w: %q: %v", ErrMalformedKey, key, err)
	}
	return rec, nil
}

// decodeSegment splits the file name's product segment into the optional
// mesoscale sector, scan mode and band. The segment always opens with the
// product code from the key's path.
func decodeSegment(seg, product string) (Domain, int, int, error) {
	rest, ok := strings.CutPrefix(seg, product)
	if !ok {
		return "", 0, 0, fmt.Errorf("file name product %q does not match path product %q", seg, product)
	}

	var domain Domain
	if strings.HasPrefix(strings.ToUpper(product), "ABI") {
		switch suffix := product[len(product)-1:]; suffix {
		case "C", "F", "M":
			domain = Domain(suffix)
		}
	}
	if len(rest) > 0 && (rest[0] == '1' || rest[0] == '2') {
		if domain != DomainMesoscale {
			return "", 0, 0, fmt.Errorf("sector digit on non-mesoscale product %q", product)
		}
		domain = Domain("M" + rest[:1])
		rest = rest[1:]
	}

	var mode, band int
	if m, ok := strings.CutPrefix(rest, "-M"); ok {
		if len(m) < 1 || m[0] < '1' || m[0] > '9' {
			return "", 0, 0, fmt.Errorf("bad scan mode in %q", seg)
		}
		mode = int(m[0] - '0')
		rest = m[1:]
	}
	if b, ok := strings.CutPrefix(rest, "C"); ok {
		if len(b) != 2 || !allDigits(b) {
			return "", 0, 0, fmt.Errorf("bad band in %q", seg)
		}
		band, _ = strconv.Atoi(b)
		rest = ""
	}
	if rest != "" {
		return "", 0, 0, fmt.Errorf("unrecognized trailer %q in %q", rest, seg)
	}
	return domain, mode, band, nil
}

func satelliteFromAbbrev(s string) (Satellite, error) {
	switch s {
	case "G16":
		return GOES16, nil
	case "G17":
		return GOES17, nil
	case "G18":
		return GOES18, nil
	}
	return "", fmt.Errorf("unknown satellite abbreviation %q", s)
}

// formatStamp renders a time as its file name stamp, e.g. s20221520001176.
func formatStamp(prefix byte, t time.Time) string {
	u := t.UTC()
	return string(prefix) + u.Format(stampLayout) + strconv.Itoa(u.Nanosecond()/1e8)
}

// parseStamp is the inverse of formatStamp.
func parseStamp(s string, prefix byte) (time.Time, error) {
	if len(s) != 15 || s[0] != prefix {
		return time.Time{}, fmt.Errorf("bad %c-stamp %q", prefix, s)
	}
	t, err := time.Parse(stampLayout, s[1:14])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad %c-stamp %q: %v", prefix, s, err)
	}
	if s[14] < '0' || s[14] > '9' {
		return time.Time{}, fmt.Errorf("bad %c-stamp %q: tenths digit", prefix, s)
	}
	return t.Add(time.Duration(s[14]-'0') * 100 * time.Millisecond), nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
