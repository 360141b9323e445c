package emit

import (
	"path"
	"slices"
)

// UpgradeStep promotes one tier of a faction to the next.
type UpgradeStep struct {
	Tier         int
	From         string
	To           string
	Requirements []string
}

// UpgradeChain is the ordered promotion path of one faction.
type UpgradeChain struct {
	Faction string
	Steps   []UpgradeStep
}

// RelPath returns the chain's path below the assets root.
func (c UpgradeChain) RelPath() string {
	return path.Join("upgrade_chains", c.Faction+"_upgrades.ron")
}

// MarshalRON renders c as a RON struct.
func (c UpgradeChain) MarshalRON() []byte {
	steps := make(ronList, len(c.Steps))
	for i, s := range c.Steps {
		steps[i] = ronRecord{
			{"tier", ronInt(s.Tier)},
			{"from", ronString(s.From)},
			{"to", ronString(s.To)},
			{"requirements", ronStrings(s.Requirements)},
		}
	}
	return encodeRON(ronStruct{
		{"faction", ronString(c.Faction)},
		{"steps", steps},
	})
}

var tierRequirements = map[string][]string{
	"cultist": {"complete the initiation rite", "serve one season as acolyte"},
	"priest":  {"lead a ritual", "hold a shrine"},
	"leader":  {"depose or outlive the current leader", "command the faith of the priesthood"},
}

// UpgradeChains builds one chain per faction found among assets. Without
// autoDetect every faction gets the full tier ladder. With autoDetect a
// faction's ladder holds only the tiers its units' content names, plus
// leader when the faction has a leader asset; factions with fewer than two
// tiers get no chain.
func UpgradeChains(assets []Asset, autoDetect bool) []UpgradeChain {
	tiers := make(map[string]map[string]bool)
	add := func(faction, tier string) {
		if faction == "" || faction == Independent {
			return
		}
		if tiers[faction] == nil {
			tiers[faction] = make(map[string]bool)
		}
		if tier != "" {
			tiers[faction][tier] = true
		}
	}
	for _, a := range assets {
		switch a.Kind {
		case Units:
			add(a.Faction, tierOf(a.Entity.RawValue))
		case Leaders:
			add(a.Faction, "leader")
		}
	}

	names := make([]string, 0, len(tiers))
	for f := range tiers {
		names = append(names, f)
	}
	slices.Sort(names)

	var chains []UpgradeChain
	for _, f := range names {
		ladder := UpgradeTiers
		if autoDetect {
			ladder = nil
			for _, t := range UpgradeTiers {
				if tiers[f][t] {
					ladder = append(ladder, t)
				}
			}
		}
		if len(ladder) < 2 {
			continue
		}
		c := UpgradeChain{Faction: f}
		for i := 1; i < len(ladder); i++ {
			c.Steps = append(c.Steps, UpgradeStep{
				Tier:         i,
				From:         f + "_" + ladder[i-1],
				To:           f + "_" + ladder[i],
				Requirements: append([]string{}, tierRequirements[ladder[i]]...),
			})
		}
		chains = append(chains, c)
	}
	return chains
}
