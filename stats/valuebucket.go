package stats

// ValueBuckets
//
// 用來快速定位最終點數 -> DistRecord 位置 O(1)
//
// 請勿修改預設值
//   - 點數區間: bust, [2,16], 17, 18, 19, 20, 21
type ValueBuckets struct {
	valueBucketStr []string
	valueBucketLUT []int
}

// Buckets 預設點數分桶
var Buckets *ValueBuckets = newValueBuckets()

func newValueBuckets() *ValueBuckets {
	b := &ValueBuckets{
		valueBucketStr: []string{"bust", "<=16", "17", "18", "19", "20", "21"},
		valueBucketLUT: make([]int, 22),
	}
	// 0..16 落在 <=16；17..21 各自一桶
	for v := 0; v <= 21; v++ {
		if v <= 16 {
			b.valueBucketLUT[v] = 1
			continue
		}
		b.valueBucketLUT[v] = v - 15
	}
	return b
}

func (b *ValueBuckets) ValueBucketStr() []string {
	return b.valueBucketStr
}

func (b *ValueBuckets) Len() int {
	return len(b.valueBucketStr)
}

// Index 回傳點數所在的桶；爆牌（負值）與超過 21 都歸到 bust。
func (b *ValueBuckets) Index(value int) int {
	if value < 0 || value >= len(b.valueBucketLUT) {
		return 0
	}
	return b.valueBucketLUT[value]
}
