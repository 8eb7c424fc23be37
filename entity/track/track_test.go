package track_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/entity/track"
)

const meterToDeg = 180 / (math.Pi * 6371000)

// squareLoop 生成边长side米、每边perSide段的正方形闭合航点环（逆时针，赤道附近）
func squareLoop(side float64, perSide int) []track.Waypoint {
	wps := make([]track.Waypoint, 0, 4*perSide)
	corners := [][2]float64{{0, 0}, {side, 0}, {side, side}, {0, side}}
	for i := 0; i < 4; i++ {
		a, b := corners[i], corners[(i+1)%4]
		for j := 0; j < perSide; j++ {
			k := float64(j) / float64(perSide)
			x := a[0] + (b[0]-a[0])*k
			y := a[1] + (b[1]-a[1])*k
			wps = append(wps, track.Waypoint{Lat: y * meterToDeg, Lng: x * meterToDeg})
		}
	}
	return wps
}

func TestTrackLengthsClosedLoop(t *testing.T) {
	// test: 4-point square, lengths partition the loop
	trk, err := track.New(squareLoop(100, 1), 8, 9)
	assert.Nil(t, err)
	assert.Equal(t, 4, trk.SegmentCount())
	assert.InDelta(t, 400, trk.TotalLength(), 1)

	sum := 0.0
	for i := 0; i < trk.SegmentCount(); i++ {
		l := trk.SegmentLength(i)
		assert.Greater(t, l, 0.0)
		sum += l
	}
	assert.InDelta(t, trk.TotalLength(), sum, 1e-9)
}

func TestCornerClassification(t *testing.T) {
	// 16-point square, window 1: side-interior segments straight, edge segments corner
	trk, err := track.New(squareLoop(100, 4), 1, 30)
	assert.Nil(t, err)
	assert.Equal(t, 16, trk.SegmentCount())
	assert.Equal(t, 8, trk.CornerCount())
	assert.Equal(t, 4, len(trk.Straights()))

	for _, st := range trk.Straights() {
		assert.Greater(t, st.Length, 0.0)
		// straight segments are never corner-flagged and map back to the straight
		seg := st.StartSegment
		for {
			assert.False(t, trk.IsCorner(seg))
			assert.Equal(t, st.Index, trk.StraightIndex(seg))
			if seg == st.EndSegment {
				break
			}
			seg = (seg + 1) % trk.SegmentCount()
		}
	}
	for i := 0; i < trk.SegmentCount(); i++ {
		if trk.IsCorner(i) {
			assert.Equal(t, -1, trk.StraightIndex(i))
		}
	}
}

func TestAllCornerTrack(t *testing.T) {
	// absurdly low threshold flags every segment as a corner: zero straights, no crash
	trk, err := track.New(squareLoop(100, 4), 1, -1)
	assert.Nil(t, err)
	assert.Equal(t, trk.SegmentCount(), trk.CornerCount())
	assert.Equal(t, 0, len(trk.Straights()))
	for i := 0; i < trk.SegmentCount(); i++ {
		assert.Equal(t, -1, trk.StraightIndex(i))
	}
}

func TestFullCircleStraight(t *testing.T) {
	// window larger than the loop wraps onto itself: no corner, one full-circle straight
	trk, err := track.New(squareLoop(100, 1), 8, 9)
	assert.Nil(t, err)
	assert.Equal(t, 0, trk.CornerCount())
	assert.Equal(t, 1, len(trk.Straights()))
	assert.InDelta(t, trk.TotalLength(), trk.Straights()[0].Length, 1e-9)
}

func TestMalformedTrack(t *testing.T) {
	_, err := track.New(nil, 8, 9)
	assert.NotNil(t, err)
	_, err = track.New([]track.Waypoint{{Lat: 0, Lng: 0}}, 8, 9)
	assert.NotNil(t, err)
	// duplicates collapse to a single point
	_, err = track.New([]track.Waypoint{{Lat: 1, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 1, Lng: 1}}, 8, 9)
	assert.NotNil(t, err)
	// explicit ring closure is dropped, remainder still valid
	_, err = track.New([]track.Waypoint{{Lat: 0, Lng: 0}, {Lat: 0.001, Lng: 0}, {Lat: 0, Lng: 0.001}, {Lat: 0, Lng: 0}}, 1, 30)
	assert.Nil(t, err)
}

func TestStraightStraddlesStartFinish(t *testing.T) {
	// rotate the square so the start/finish line sits mid-side: the straddling
	// straight must come out as one record, not two
	wps := squareLoop(100, 4)
	rotated := append(append([]track.Waypoint{}, wps[2:]...), wps[:2]...)
	trk, err := track.New(rotated, 1, 30)
	assert.Nil(t, err)
	assert.Equal(t, 4, len(trk.Straights()))
	found := false
	for _, st := range trk.Straights() {
		if st.EndSegment < st.StartSegment {
			found = true
			// wraparound arithmetic still yields the true run length
			assert.InDelta(t, 50, st.Length, 1)
		}
	}
	assert.True(t, found)
}

func TestLngLatRoundTrip(t *testing.T) {
	wps := squareLoop(100, 4)
	trk, err := track.New(wps, 1, 30)
	assert.Nil(t, err)
	lng, lat := trk.LngLatAt(trk.At(0))
	assert.InDelta(t, wps[0].Lng, lng, 1e-9)
	assert.InDelta(t, wps[0].Lat, lat, 1e-9)
}
