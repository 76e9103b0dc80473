package domain

// Инвестиционный план (VIP уровень)
type Plan string

const (
	PlanVIP0       Plan = "VIP_0"
	PlanVIP1       Plan = "VIP_1"
	PlanVIP2       Plan = "VIP_2"
	PlanVIP3       Plan = "VIP_3"
	PlanVIP4       Plan = "VIP_4"
	PlanVIP5       Plan = "VIP_5"
	PlanVIP6       Plan = "VIP_6"
	PlanVIP7       Plan = "VIP_7"
	PlanVIP8       Plan = "VIP_8"
	PlanVIP9       Plan = "VIP_9"
	PlanVIP10      Plan = "VIP_10"
	PlanVIP11      Plan = "VIP_11"
	PlanVIPBronze  Plan = "VIP_Bronze"
	PlanVIPSilver  Plan = "VIP_Silver"
	PlanVIPGolden  Plan = "VIP_Golden"
	PlanVIPDiamond Plan = "VIP_Diamond"
)

// ежедневная прибыль по плану, USDT
var planProfits = map[Plan]float64{
	PlanVIP0:       0,
	PlanVIP1:       1,
	PlanVIP2:       2.5,
	PlanVIP3:       4,
	PlanVIP4:       8,
	PlanVIP5:       10,
	PlanVIP6:       15,
	PlanVIP7:       25,
	PlanVIP8:       35,
	PlanVIP9:       60,
	PlanVIP10:      85,
	PlanVIP11:      100,
	PlanVIPBronze:  200,
	PlanVIPSilver:  400,
	PlanVIPGolden:  700,
	PlanVIPDiamond: 1000,
}

// порядок планов для сравнения в реферальной логике
var planLevels = map[Plan]int{
	PlanVIP0:       0,
	PlanVIP1:       1,
	PlanVIP2:       2,
	PlanVIP3:       3,
	PlanVIP4:       4,
	PlanVIP5:       5,
	PlanVIP6:       6,
	PlanVIP7:       7,
	PlanVIP8:       8,
	PlanVIP9:       9,
	PlanVIP10:      10,
	PlanVIP11:      11,
	PlanVIPBronze:  12,
	PlanVIPSilver:  13,
	PlanVIPGolden:  14,
	PlanVIPDiamond: 15,
}

// проверяет, что план существует
func (p Plan) Valid() bool {
	_, ok := planProfits[p]
	return ok
}

// ежедневная прибыль плана; 0 для неизвестных планов
func (p Plan) DailyProfit() float64 {
	return planProfits[p]
}

// порядковый уровень плана; 0 для неизвестных планов
func (p Plan) Level() int {
	return planLevels[p]
}

// список всех планов в порядке возрастания уровня
func AllPlans() []Plan {
	return []Plan{
		PlanVIP0, PlanVIP1, PlanVIP2, PlanVIP3, PlanVIP4, PlanVIP5,
		PlanVIP6, PlanVIP7, PlanVIP8, PlanVIP9, PlanVIP10, PlanVIP11,
		PlanVIPBronze, PlanVIPSilver, PlanVIPGolden, PlanVIPDiamond,
	}
}
