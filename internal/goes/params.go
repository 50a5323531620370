package goes

import (
	"fmt"
	"strings"
)

// Satellite identifies one spacecraft in the GOES-R series. The value is the
// public archive bucket name, e.g. "noaa-goes16".
type Satellite string

const (
	GOES16 Satellite = "noaa-goes16"
	GOES17 Satellite = "noaa-goes17"
	GOES18 Satellite = "noaa-goes18"
)

// Bucket returns the object store bucket holding this satellite's archive.
func (s Satellite) Bucket() string { return string(s) }

// Number returns the series number, e.g. 16 for "noaa-goes16".
func (s Satellite) Number() int {
	switch s {
	case GOES16:
		return 16
	case GOES17:
		return 17
	case GOES18:
		return 18
	}
	return 0
}

// Abbrev returns the short form embedded in file names, e.g. "G16".
func (s Satellite) Abbrev() string { return fmt.Sprintf("G%02d", s.Number()) }

func (s Satellite) String() string { return string(s) }

// satelliteAliases maps accepted spellings to the canonical bucket name.
// EAST is GOES-16; WEST is GOES-18, which relieved GOES-17 in early 2023.
var satelliteAliases = map[string]Satellite{
	"16": GOES16, "G16": GOES16, "GOES16": GOES16, "GOES-16": GOES16, "EAST": GOES16, "GOES-EAST": GOES16,
	"17": GOES17, "G17": GOES17, "GOES17": GOES17, "GOES-17": GOES17,
	"18": GOES18, "G18": GOES18, "GOES18": GOES18, "GOES-18": GOES18, "WEST": GOES18, "GOES-WEST": GOES18,
}

// ParseSatellite resolves a satellite name or alias to its canonical form.
// Accepted forms include "16", "G16", "GOES16", "EAST", "WEST" and the
// bucket name itself; matching is case-insensitive and a leading "NOAA-"
// prefix is ignored.
func ParseSatellite(name string) (Satellite, error) {
	v := strings.ToUpper(strings.TrimSpace(name))
	v = strings.TrimPrefix(v, "NOAA-")
	if sat, ok := satelliteAliases[v]; ok {
		return sat, nil
	}
	return "", fmt.Errorf("unknown satellite %q: want one of 16, 17, 18 or an alias like G16, EAST, WEST", name)
}

// Domain is an ABI scan region indicator. Mesoscale queries may name a
// specific sector (M1, M2) or either sector (M).
type Domain string

const (
	DomainCONUS      Domain = "C"
	DomainFull       Domain = "F"
	DomainMesoscale  Domain = "M"
	DomainMesoscale1 Domain = "M1"
	DomainMesoscale2 Domain = "M2"
)

var domainAliases = map[string]Domain{
	"C": DomainCONUS, "CONUS": DomainCONUS,
	"F": DomainFull, "FULL": DomainFull, "FULLDISK": DomainFull, "FULL DISK": DomainFull,
	"M": DomainMesoscale, "MESOSCALE": DomainMesoscale,
	"M1": DomainMesoscale1,
	"M2": DomainMesoscale2,
}

// ParseDomain resolves a domain code or alias ("CONUS", "FULL", ...).
// The empty string parses to the empty Domain, meaning unspecified.
func ParseDomain(name string) (Domain, error) {
	if strings.TrimSpace(name) == "" {
		return "", nil
	}
	if d, ok := domainAliases[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return d, nil
	}
	return "", fmt.Errorf("unknown domain %q: want C, F, M, M1 or M2", name)
}

// Letter returns the single-letter region code used in product names:
// M1 and M2 both map to M.
func (d Domain) Letter() string {
	switch d {
	case DomainMesoscale1, DomainMesoscale2:
		return "M"
	default:
		return string(d)
	}
}

// SectorFilter returns the file name fragment that narrows a mesoscale
// listing to one sector ("M1-M" or "M2-M"), or "" when no narrowing applies.
func (d Domain) SectorFilter() string {
	switch d {
	case DomainMesoscale1, DomainMesoscale2:
		return string(d) + "-M"
	default:
		return ""
	}
}

// productAliases maps shorthand names to full product codes.
var productAliases = map[string]string{
	"GLM":  "GLM-L2-LCFA",
	"ABIC": "ABI-L2-MCMIPC",
	"ABIF": "ABI-L2-MCMIPF",
	"ABIM": "ABI-L2-MCMIPM",
}

// ResolveProduct expands product shorthands and folds the domain into the
// product code the way the archive names them. "GLM" expands to the
// lightning product; "ABI" to multichannel imagery for the given domain
// (CONUS when unspecified). ABI product codes that do not already end in a
// region letter get the domain letter appended; a product that does end in
// one fixes the domain instead. Non-ABI products ignore the domain.
func ResolveProduct(product string, domain Domain) (string, Domain, error) {
	p := strings.TrimSpace(product)
	if p == "" {
		return "", "", fmt.Errorf("product is required")
	}
	if full, ok := productAliases[strings.ToUpper(p)]; ok {
		p = full
		if !strings.HasPrefix(p, "ABI") {
			return p, "", nil
		}
		return p, suffixDomain(p, domain), nil
	}
	if strings.ToUpper(p) == "ABI" {
		if domain == "" {
			domain = DomainCONUS
		}
		return "ABI-L2-MCMIP" + domain.Letter(), domain, nil
	}

	if !strings.HasPrefix(strings.ToUpper(p), "ABI") {
		// Domain is an ABI concept only.
		return p, "", nil
	}

	switch last := p[len(p)-1:]; last {
	case "C", "F", "M":
		// A trailing region letter on the product wins over the domain
		// argument, unless the domain picks a mesoscale sector.
		domain = suffixDomain(p, domain)
	default:
		if domain == "" {
			return "", "", fmt.Errorf("product %q needs a domain: C, F, M, M1 or M2", product)
		}
		p += domain.Letter()
	}
	return p, domain, nil
}

func suffixDomain(product string, domain Domain) Domain {
	suffix := Domain(product[len(product)-1:])
	if suffix == DomainMesoscale && (domain == DomainMesoscale1 || domain == DomainMesoscale2) {
		return domain
	}
	return suffix
}
