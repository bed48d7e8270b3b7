package frame

import (
	"math"
	"sort"
)

// Groups 是按键哈希分区的结果：先分区，再在分区内聚合，最后按行号回填。
// 分组按首次出现顺序编号；null 键自成一组。
type Groups struct {
	Keys  []string // 分组键（null 组为空串，由 Null 标记）
	Rows  [][]int  // 每组的行号（升序）
	Of    []int    // 行号 -> 组号
	Null  int      // null 组的组号，-1 表示没有
	nrows int
}

// GroupBy 按列值分区；数值列按其字符串形式分组。
func GroupBy(key *Column) *Groups {
	n := key.Len()
	g := &Groups{Of: make([]int, n), Null: -1, nrows: n}
	index := make(map[string]int)
	for i := 0; i < n; i++ {
		k, ok := key.Str(i)
		var gi int
		if !ok {
			if g.Null < 0 {
				g.Null = len(g.Keys)
				g.Keys = append(g.Keys, "")
				g.Rows = append(g.Rows, nil)
			}
			gi = g.Null
		} else {
			var seen bool
			gi, seen = index[k]
			if !seen {
				gi = len(g.Keys)
				index[k] = gi
				g.Keys = append(g.Keys, k)
				g.Rows = append(g.Rows, nil)
			}
		}
		g.Of[i] = gi
		g.Rows[gi] = append(g.Rows[gi], i)
	}
	return g
}

// Len 返回分组数
func (g *Groups) Len() int {
	return len(g.Keys)
}

// Sizes 返回每组的行数（首次出现顺序）
func (g *Groups) Sizes() []int {
	out := make([]int, len(g.Rows))
	for i, rows := range g.Rows {
		out[i] = len(rows)
	}
	return out
}

// Count 统计每组内 c 的非 null 行数，并回填到每一行。
func (g *Groups) Count(name string, c *Column) *Column {
	counts := make([]float64, len(g.Rows))
	for gi, rows := range g.Rows {
		for _, r := range rows {
			if c.Valid[r] {
				counts[gi]++
			}
		}
	}
	return g.scatter(name, KindInt, counts, nil)
}

// Min 计算每组内 c 的最小值（忽略 null），并回填到每一行；全 null 的组为 null。
func (g *Groups) Min(name string, c *Column) *Column {
	mins := make([]float64, len(g.Rows))
	found := make([]bool, len(g.Rows))
	for gi, rows := range g.Rows {
		for _, r := range rows {
			v, ok := c.Float(r)
			if !ok || math.IsNaN(v) {
				continue
			}
			if !found[gi] || v < mins[gi] {
				mins[gi] = v
				found[gi] = true
			}
		}
	}
	return g.scatter(name, KindFloat, mins, found)
}

// Mean 计算每组内 c 的均值（忽略 null），返回组号 -> 均值。
func (g *Groups) Mean(c *Column) ([]float64, []bool) {
	means := make([]float64, len(g.Rows))
	found := make([]bool, len(g.Rows))
	for gi, rows := range g.Rows {
		sum, cnt := 0.0, 0
		for _, r := range rows {
			if v, ok := c.Float(r); ok {
				sum += v
				cnt++
			}
		}
		if cnt > 0 {
			means[gi] = sum / float64(cnt)
			found[gi] = true
		}
	}
	return means, found
}

// RankAverage 计算组内升序排名（并列取平均名次，从 1 开始），null 行排名为 null。
func (g *Groups) RankAverage(name string, c *Column) *Column {
	if !c.Kind.Numeric() {
		c = c.AsFloat()
	}
	ranks := make([]float64, g.nrows)
	valid := make([]bool, g.nrows)
	idx := make([]int, 0)
	for _, rows := range g.Rows {
		idx = idx[:0]
		for _, r := range rows {
			if v, ok := c.Float(r); ok && !math.IsNaN(v) {
				idx = append(idx, r)
			}
		}
		averageRank(c, idx, ranks, valid)
	}
	return NewFloat(name, ranks, valid)
}

func averageRank(c *Column, idx []int, ranks []float64, valid []bool) {
	sort.SliceStable(idx, func(a, b int) bool {
		return c.Nums[idx[a]] < c.Nums[idx[b]]
	})
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && c.Nums[idx[j+1]] == c.Nums[idx[i]] {
			j++
		}
		// 名次 i+1 .. j+1 的平均值
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
			valid[idx[k]] = true
		}
		i = j + 1
	}
}

func (g *Groups) scatter(name string, kind Kind, perGroup []float64, found []bool) *Column {
	vals := make([]float64, g.nrows)
	valid := make([]bool, g.nrows)
	for r, gi := range g.Of {
		vals[r] = perGroup[gi]
		valid[r] = found == nil || found[gi]
	}
	return &Column{Name: name, Kind: kind, Nums: vals, Valid: valid}
}
