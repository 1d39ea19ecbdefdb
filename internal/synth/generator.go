package synth

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

//nolint:gochecknoglobals // name pools
var (
	firstNames  = []string{"JOHN", "MARY", "ANA", "DAVID", "LINDA", "JAMES", "SUSAN", "ROBERT", "KEALA", "MIGUEL"}
	middleNames = []string{"JAMES", "LEE", "MARIE", "ANN", "PAUL", "RAY", "JOY", "ALLEN"}
	surnames    = []string{"SMITH", "JONES", "LOPEZ", "NGUYEN", "BROWN", "GARCIA", "MILLER", "AKANA", "DAVIS", "KIM"}
	states      = []string{"IL", "CA", "GA", "NV", "HI", "UT", "WA", "OK", "OR", "AK"}
)

const (
	maxLicensesPerIdentity = 3
	firstLicenseYear       = 1980
	licenseYearSpan        = 40
	licenseTermYears       = 2
)

// person is one generated identity and its licenses.
type person struct {
	first, middle, last string
	records             []Record
}

// Generate builds cfg.Identities people holding one to three licenses each in
// distinct states and packs their records into batches. Names are unique per
// person, and every record carries a license date and the person's origin, so
// each person links to exactly one identity.
func Generate(cfg *Config) []Batch {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	var records []Record
	for i := 0; i < cfg.Identities; i++ {
		records = append(records, newPerson(rng, i).records...)
	}
	rng.Shuffle(len(records), func(i, j int) { records[i], records[j] = records[j], records[i] })

	size := max(cfg.BatchSize, 1)
	batches := make([]Batch, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		batches = append(batches, Batch{
			BatchID: uuid.NewString(),
			Records: records[start:end],
		})
	}
	return batches
}

func newPerson(rng *rand.Rand, index int) person {
	p := person{
		first:  firstNames[rng.IntN(len(firstNames))],
		middle: middleNames[rng.IntN(len(middleNames))],
		// the index keeps names unique across people
		last: fmt.Sprintf("%s%d", surnames[rng.IntN(len(surnames))], index),
	}

	licenses := 1 + rng.IntN(maxLicensesPerIdentity)
	picked := rng.Perm(len(states))[:licenses]
	origin := states[picked[0]]
	for n, idx := range picked {
		middle := p.middle
		if n > 0 && rng.IntN(2) == 0 {
			middle = middle[:1]
		}
		issued := time.Date(firstLicenseYear+rng.IntN(licenseYearSpan), time.Month(1+rng.IntN(12)), 1+rng.IntN(28), 0, 0, 0, 0, time.UTC)
		active := rng.IntN(3) > 0
		expires := time.Now().UTC().AddDate(licenseTermYears, 0, 0)
		if !active {
			expires = issued.AddDate(licenseTermYears, 0, 0)
		}
		p.records = append(p.records, Record{
			FirstName:      p.first,
			MiddleName:     middle,
			LastName:       p.last,
			SourceState:    states[idx],
			OriginState:    origin,
			LicenseDate:    issued.Format(time.DateOnly),
			ExpirationDate: expires.Format(time.DateOnly),
			LicenseActive:  active,
		})
	}
	return p
}

// countRecords sums the records of batches.
func countRecords(batches []Batch) int {
	n := 0
	for _, b := range batches {
		n += len(b.Records)
	}
	return n
}
