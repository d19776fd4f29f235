package storage

import (
	"sort"

	"github.com/zn-har/Bingo/internal/model"
)

// SortScansNewestFirst orders scans by timestamp descending, newest ID first on ties
func SortScansNewestFirst(scans []*model.ScanRecord) {
	sort.Slice(scans, func(i, j int) bool {
		if !scans[i].Timestamp.Equal(scans[j].Timestamp) {
			return scans[i].Timestamp.After(scans[j].Timestamp)
		}
		return scans[i].ID > scans[j].ID
	})
}

// SortWinnersByTime orders winners by WonAt ascending, oldest ID first on ties
func SortWinnersByTime(winners []*model.Winner) {
	sort.Slice(winners, func(i, j int) bool {
		if !winners[i].WonAt.Equal(winners[j].WonAt) {
			return winners[i].WonAt.Before(winners[j].WonAt)
		}
		return winners[i].ID < winners[j].ID
	})
}
