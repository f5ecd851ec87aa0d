package sim

import (
	"fmt"

	"github.com/utakatalp/league-odds/internal/league"
)

// Band is a half-open rank range [From, To).
type Band struct {
	From int `yaml:"from" json:"from"`
	To   int `yaml:"to" json:"to"`
}

func (b Band) Len() int { return b.To - b.From }

// Bands maps final ranks onto tiers for a league of a fixed size. Bands may
// overlap: the champion is also counted as a continental qualifier.
type Bands struct {
	Size               int  `yaml:"size" json:"size"`
	Champion           Band `yaml:"champion" json:"champion"`
	Continental        Band `yaml:"continental" json:"continental"`
	QualifyContinental Band `yaml:"qualify_continental" json:"qualify_continental"`
	SubContinental     Band `yaml:"sub_continental" json:"sub_continental"`
	Relegation         Band `yaml:"relegation" json:"relegation"`
}

// DefaultBands is the 20-team layout: 1 champion, 4 continental,
// 2 qualifying, 6 sub-continental and 4 relegated.
func DefaultBands() Bands {
	return Bands{
		Size:               20,
		Champion:           Band{0, 1},
		Continental:        Band{0, 4},
		QualifyContinental: Band{4, 6},
		SubContinental:     Band{6, 12},
		Relegation:         Band{16, 20},
	}
}

func (b Bands) Band(t league.Tier) Band {
	switch t {
	case league.Champion:
		return b.Champion
	case league.Continental:
		return b.Continental
	case league.QualifyContinental:
		return b.QualifyContinental
	case league.SubContinental:
		return b.SubContinental
	case league.Relegation:
		return b.Relegation
	}
	return Band{}
}

func (b Bands) Validate() error {
	if b.Size <= 0 {
		return &league.InvalidConfigurationError{Field: "league.size", Message: "must be positive"}
	}
	for _, t := range league.Tiers() {
		band := b.Band(t)
		if band.From < 0 || band.To > b.Size || band.From > band.To {
			return &league.InvalidConfigurationError{
				Field:   "league." + t.String(),
				Message: fmt.Sprintf("band [%d, %d) outside [0, %d)", band.From, band.To, b.Size),
			}
		}
	}
	return nil
}

// byRank lists the tiers awarded to each final rank.
func (b Bands) byRank() [][]league.Tier {
	ranks := make([][]league.Tier, b.Size)
	for _, t := range league.Tiers() {
		band := b.Band(t)
		for r := band.From; r < band.To; r++ {
			ranks[r] = append(ranks[r], t)
		}
	}
	return ranks
}
