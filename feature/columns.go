package feature

import "fmt"

// 原始记录的列名。
const (
	ColID          = "Id"
	ColRankerID    = "ranker_id"
	ColSelected    = "selected"
	ColTotalPrice  = "totalPrice"
	ColTaxes       = "taxes"
	ColFrequentFly = "frequentFlyer"
	ColCorpTariff  = "corporateTariffCode"
	ColAccessTP    = "pricingInfo_isAccessTP"
	ColPassengers  = "pricingInfo_passengerCount"
	ColMiniRules0  = "miniRules0_monetaryAmount"
	ColMiniRules1  = "miniRules1_monetaryAmount"
	ColSearchRoute = "searchRoute"
	ColProfileID   = "profileId"
	ColRequestDate = "requestDate"
)

const (
	numLegs     = 2
	numSegments = 4
	// MissingString 是字符串列的 null 填充值
	MissingString = "missing"
)

// RequiredColumns 是 data_raw 的结构契约，缺失任何一列立即失败。
var RequiredColumns = []string{ColID, ColRankerID, ColTotalPrice}

// ReferenceColumns 是 train_df（人群统计来源）的结构契约。
var ReferenceColumns = []string{ColSelected, CarrierColumn(0, 0), CarrierColumn(1, 0)}

func legDuration(leg int) string {
	return fmt.Sprintf("legs%d_duration", leg)
}

func segmentPrefix(leg, seg int) string {
	return fmt.Sprintf("legs%d_segments%d_", leg, seg)
}

func segmentDuration(leg, seg int) string {
	return segmentPrefix(leg, seg) + "duration"
}

// CarrierColumn 返回某航段的销售航司代码列名
func CarrierColumn(leg, seg int) string {
	return segmentPrefix(leg, seg) + "marketingCarrier_code"
}

func departureAirport(leg, seg int) string {
	return segmentPrefix(leg, seg) + "departureFrom_airport_iata"
}

func cabinClass(leg, seg int) string {
	return segmentPrefix(leg, seg) + "cabinClass"
}

func baggageQuantity(leg, seg int) string {
	return segmentPrefix(leg, seg) + "baggageAllowance_quantity"
}

// TimestampColumns 是参与时刻特征的四个时间戳列
var TimestampColumns = []string{
	"legs0_departureAt", "legs0_arrivalAt",
	"legs1_departureAt", "legs1_arrivalAt",
}

// DurationColumns 返回所有可能的时长列：两段行程总时长 + 每个航段时长。
func DurationColumns() []string {
	cols := []string{legDuration(0), legDuration(1)}
	for leg := 0; leg < numLegs; leg++ {
		for seg := 0; seg < numSegments; seg++ {
			cols = append(cols, segmentDuration(leg, seg))
		}
	}
	return cols
}

// RawStringColumns 返回读取原始 CSV 时应强制按字符串解析的列，
// 避免类型推断把 ID、航司代码或时长文本读成数字。
func RawStringColumns() []string {
	cols := []string{ColID, ColRankerID, ColProfileID, ColRequestDate, ColFrequentFly, ColSearchRoute}
	cols = append(cols, DurationColumns()...)
	cols = append(cols, TimestampColumns...)
	for leg := 0; leg < numLegs; leg++ {
		for seg := 0; seg < numSegments; seg++ {
			p := segmentPrefix(leg, seg)
			cols = append(cols,
				p+"marketingCarrier_code",
				p+"operatingCarrier_code",
				p+"aircraft_code",
				p+"flightNumber",
				p+"departureFrom_airport_iata",
				p+"arrivalTo_airport_iata",
				p+"arrivalTo_airport_city_iata",
			)
		}
	}
	return cols
}
