package core

import (
	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/schema"
)

func testConfig() *contract.Config {
	return &contract.Config{
		EPRatios:       schema.EPRatios{1, 0, 0, 0, 0, 0},
		ReferenceStat:  schema.StatAttackPower,
		EPStats:        []schema.UnitStat{schema.StatAgility, schema.StatAttackPower, schema.StatStrength, schema.PseudoStatMainHandDps},
		DefaultWeights: schema.StatVector{}.With(schema.StatAttackPower, 1).With(schema.StatAgility, 2),
		CurrentWeights: schema.StatVector{}.With(schema.StatAttackPower, 1).With(schema.StatAgility, 1.5),
		Iterations:     1000,
	}
}

// rawResult has dps and dtps only; hps, tps, tmi and p_death are not applicable.
func rawResult() schema.StatWeightsResult {
	return schema.StatWeightsResult{
		schema.DPSMetric: {
			Weights:      schema.StatVector{}.With(schema.StatAttackPower, 10).With(schema.StatAgility, 25).With(schema.StatStrength, 20),
			WeightsStdev: schema.StatVector{}.With(schema.StatAttackPower, 2).With(schema.StatAgility, 4),
		},
		schema.DTPSMetric: {
			Weights: schema.StatVector{}.With(schema.StatArmor, -0.5).With(schema.StatAgility, -1),
		},
	}
}
