package goes

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeKey(t *testing.T) {
	tests := []struct {
		name string
		rec  FileRecord
		want string
	}{
		{
			name: "conus multichannel",
			rec: FileRecord{
				Satellite: GOES16,
				Product:   "ABI-L2-MCMIPC",
				Domain:    DomainCONUS,
				Mode:      6,
				Start:     time.Date(2022, 6, 1, 0, 1, 17, 3e8, time.UTC),
				End:       time.Date(2022, 6, 1, 0, 3, 54, 9e8, time.UTC),
				Created:   time.Date(2022, 6, 1, 0, 4, 1, 0, time.UTC),
			},
			want: "ABI-L2-MCMIPC/2022/152/00/OR_ABI-L2-MCMIPC-M6_G16_s20221520001173_e20221520003549_c20221520004010.nc",
		},
		{
			name: "mesoscale sector",
			rec: FileRecord{
				Satellite: GOES16,
				Product:   "ABI-L2-MCMIPM",
				Domain:    DomainMesoscale1,
				Mode:      6,
				Start:     time.Date(2022, 6, 1, 13, 30, 0, 0, time.UTC),
				End:       time.Date(2022, 6, 1, 13, 30, 27, 5e8, time.UTC),
				Created:   time.Date(2022, 6, 1, 13, 30, 55, 1e8, time.UTC),
			},
			want: "ABI-L2-MCMIPM/2022/152/13/OR_ABI-L2-MCMIPM1-M6_G16_s20221521330000_e20221521330275_c20221521330551.nc",
		},
		{
			name: "banded radiances",
			rec: FileRecord{
				Satellite: GOES18,
				Product:   "ABI-L1b-RadC",
				Domain:    DomainCONUS,
				Mode:      6,
				Band:      2,
				Start:     time.Date(2022, 6, 1, 6, 1, 17, 4e8, time.UTC),
				End:       time.Date(2022, 6, 1, 6, 3, 54, 8e8, time.UTC),
				Created:   time.Date(2022, 6, 1, 6, 4, 5, 2e8, time.UTC),
			},
			want: "ABI-L1b-RadC/2022/152/06/OR_ABI-L1b-RadC-M6C02_G18_s20221520601174_e20221520603548_c20221520604052.nc",
		},
		{
			name: "lightning has no mode or band",
			rec: FileRecord{
				Satellite: GOES16,
				Product:   "GLM-L2-LCFA",
				Start:     time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC),
				End:       time.Date(2022, 6, 1, 0, 0, 20, 0, time.UTC),
				Created:   time.Date(2022, 6, 1, 0, 0, 25, 9e8, time.UTC),
			},
			want: "GLM-L2-LCFA/2022/152/00/OR_GLM-L2-LCFA_G16_s20221520000000_e20221520000200_c20221520000259.nc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeKey(tt.rec); got != tt.want {
				t.Errorf("EncodeKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeKey_RoundTrip(t *testing.T) {
	recs := []FileRecord{
		{
			Satellite: GOES16,
			Product:   "ABI-L2-MCMIPC",
			Domain:    DomainCONUS,
			Mode:      6,
			Start:     time.Date(2022, 6, 1, 0, 1, 17, 3e8, time.UTC),
			End:       time.Date(2022, 6, 1, 0, 3, 54, 9e8, time.UTC),
			Created:   time.Date(2022, 6, 1, 0, 4, 1, 0, time.UTC),
		},
		{
			Satellite: GOES17,
			Product:   "ABI-L2-MCMIPM",
			Domain:    DomainMesoscale2,
			Mode:      6,
			Start:     time.Date(2022, 6, 1, 13, 30, 0, 0, time.UTC),
			End:       time.Date(2022, 6, 1, 13, 30, 27, 5e8, time.UTC),
			Created:   time.Date(2022, 6, 1, 13, 30, 55, 1e8, time.UTC),
		},
		{
			Satellite: GOES18,
			Product:   "ABI-L1b-RadF",
			Domain:    DomainFull,
			Mode:      6,
			Band:      13,
			Start:     time.Date(2022, 6, 1, 6, 0, 0, 0, time.UTC),
			End:       time.Date(2022, 6, 1, 6, 9, 54, 8e8, time.UTC),
			Created:   time.Date(2022, 6, 1, 6, 10, 5, 2e8, time.UTC),
		},
		{
			Satellite: GOES16,
			Product:   "GLM-L2-LCFA",
			Start:     time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC),
			End:       time.Date(2022, 6, 1, 0, 0, 20, 0, time.UTC),
			Created:   time.Date(2022, 6, 1, 0, 0, 25, 9e8, time.UTC),
		},
	}

	for _, rec := range recs {
		key := EncodeKey(rec)
		t.Run(key, func(t *testing.T) {
			got, err := DecodeKey(key)
			if err != nil {
				t.Fatalf("DecodeKey() error = %v", err)
			}
			if got.Key != key {
				t.Errorf("Key = %q, want %q", got.Key, key)
			}
			if got.Satellite != rec.Satellite || got.Product != rec.Product ||
				got.Domain != rec.Domain || got.Mode != rec.Mode || got.Band != rec.Band {
				t.Errorf("DecodeKey() = %+v, want %+v", got, rec)
			}
			if !got.Start.Equal(rec.Start) {
				t.Errorf("Start = %v, want %v", got.Start, rec.Start)
			}
			if !got.End.Equal(rec.End) {
				t.Errorf("End = %v, want %v", got.End, rec.End)
			}
			if !got.Created.Equal(rec.Created) {
				t.Errorf("Created = %v, want %v", got.Created, rec.Created)
			}
		})
	}
}

func TestDecodeKey_Malformed(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{
			name: "too few path parts",
			key:  "ABI-L2-MCMIPC/2022/152/OR_ABI-L2-MCMIPC-M6_G16_s20221520001173_e20221520003549_c20221520004010.nc",
		},
		{
			name: "two-digit year",
			key:  "ABI-L2-MCMIPC/22/152/00/OR_ABI-L2-MCMIPC-M6_G16_s20221520001173_e20221520003549_c20221520004010.nc",
		},
		{
			name: "non-numeric hour",
			key:  "ABI-L2-MCMIPC/2022/152/xx/OR_ABI-L2-MCMIPC-M6_G16_s20221520001173_e20221520003549_c20221520004010.nc",
		},
		{
			name: "wrong extension",
			key:  "ABI-L2-MCMIPC/2022/152/00/OR_ABI-L2-MCMIPC-M6_G16_s20221520001173_e20221520003549_c20221520004010.txt",
		},
		{
			name: "missing OR prefix",
			key:  "ABI-L2-MCMIPC/2022/152/00/XX_ABI-L2-MCMIPC-M6_G16_s20221520001173_e20221520003549_c20221520004010.nc",
		},
		{
			name: "unknown satellite",
			key:  "ABI-L2-MCMIPC/2022/152/00/OR_ABI-L2-MCMIPC-M6_G19_s20221520001173_e20221520003549_c20221520004010.nc",
		},
		{
			name: "name product differs from path",
			key:  "GLM-L2-LCFA/2022/152/00/OR_ABI-L2-MCMIPC-M6_G16_s20221520001173_e20221520003549_c20221520004010.nc",
		},
		{
			name: "sector digit on conus product",
			key:  "ABI-L2-MCMIPC/2022/152/00/OR_ABI-L2-MCMIPC1-M6_G16_s20221520001173_e20221520003549_c20221520004010.nc",
		},
		{
			name: "short start stamp",
			key:  "ABI-L2-MCMIPC/2022/152/00/OR_ABI-L2-MCMIPC-M6_G16_s2022152000117_e20221520003549_c20221520004010.nc",
		},
		{
			name: "non-digit tenths",
			key:  "ABI-L2-MCMIPC/2022/152/00/OR_ABI-L2-MCMIPC-M6_G16_s2022152000117x_e20221520003549_c20221520004010.nc",
		},
		{
			name: "day out of range",
			key:  "ABI-L2-MCMIPC/2022/152/00/OR_ABI-L2-MCMIPC-M6_G16_s20224520001173_e20221520003549_c20221520004010.nc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeKey(tt.key)
			if !errors.Is(err, ErrMalformedKey) {
				t.Errorf("DecodeKey(%q) error = %v, want ErrMalformedKey", tt.key, err)
			}
		})
	}
}

func TestHourPrefix(t *testing.T) {
	at := time.Date(2022, 6, 1, 0, 30, 0, 0, time.UTC)
	if got, want := HourPrefix("ABI-L2-MCMIPC", at), "ABI-L2-MCMIPC/2022/152/00/"; got != want {
		t.Errorf("HourPrefix() = %q, want %q", got, want)
	}

	// Prefixes are always built in UTC, whatever zone the caller's time is in.
	cest := time.FixedZone("CEST", 2*3600)
	local := time.Date(2022, 6, 1, 2, 30, 0, 0, cest)
	if got, want := HourPrefix("ABI-L2-MCMIPC", local), "ABI-L2-MCMIPC/2022/152/00/"; got != want {
		t.Errorf("HourPrefix() = %q, want %q", got, want)
	}
}

func TestDayPrefix(t *testing.T) {
	at := time.Date(2022, 6, 1, 23, 59, 59, 0, time.UTC)
	if got, want := DayPrefix("GLM-L2-LCFA", at), "GLM-L2-LCFA/2022/152/"; got != want {
		t.Errorf("DayPrefix() = %q, want %q", got, want)
	}
}
