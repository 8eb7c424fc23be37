package input_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/entity/track"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils/input"
)

func fileConfig(file string) config.Config {
	c := config.Config{}
	c.Input.Track.File = file
	return c
}

func writeTemp(t *testing.T, name, data string) string {
	path := filepath.Join(t.TempDir(), name)
	assert.Nil(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestInitCSVComma(t *testing.T) {
	path := writeTemp(t, "track.csv", "latitude,longitude\n30.0,120.0\n30.1,120.1\n")
	res := input.Init(fileConfig(path), "")
	assert.Equal(t, []track.Waypoint{
		{Lat: 30.0, Lng: 120.0},
		{Lat: 30.1, Lng: 120.1},
	}, res.Waypoints)
}

func TestInitCSVTab(t *testing.T) {
	// 首行含制表符时按制表符分隔（原始数据的导出格式）
	path := writeTemp(t, "track.csv", "longitude\tlatitude\n120.0\t30.0\n120.1\t30.1\n")
	res := input.Init(fileConfig(path), "")
	assert.Equal(t, []track.Waypoint{
		{Lat: 30.0, Lng: 120.0},
		{Lat: 30.1, Lng: 120.1},
	}, res.Waypoints)
}

func TestInitJSONObjects(t *testing.T) {
	path := writeTemp(t, "track.json", `[{"lat":30.0,"lng":120.0},{"lat":30.1,"lng":120.1}]`)
	res := input.Init(fileConfig(path), "")
	assert.Len(t, res.Waypoints, 2)
	assert.Equal(t, track.Waypoint{Lat: 30.0, Lng: 120.0}, res.Waypoints[0])
}

func TestInitJSONPairs(t *testing.T) {
	path := writeTemp(t, "track.json", `[[30.0,120.0],[30.1,120.1]]`)
	res := input.Init(fileConfig(path), "")
	assert.Len(t, res.Waypoints, 2)
	assert.Equal(t, track.Waypoint{Lat: 30.1, Lng: 120.1}, res.Waypoints[1])
}

func TestInitSanitizesBadRows(t *testing.T) {
	path := writeTemp(t, "track.json", `[[30.0,120.0],[91.0,120.0],[30.0,181.0],[30.1,120.1]]`)
	res := input.Init(fileConfig(path), "")
	assert.Equal(t, []track.Waypoint{
		{Lat: 30.0, Lng: 120.0},
		{Lat: 30.1, Lng: 120.1},
	}, res.Waypoints)
}

func TestInitFailsOnTooFewWaypoints(t *testing.T) {
	path := writeTemp(t, "track.json", `[[91.0,120.0],[30.1,120.1]]`)
	assert.Panics(t, func() { input.Init(fileConfig(path), "") })
}

func TestInitFailsOnMissingFile(t *testing.T) {
	assert.Panics(t, func() {
		input.Init(fileConfig(filepath.Join(t.TempDir(), "nope.csv")), "")
	})
}

func TestInitFailsOnBadCSV(t *testing.T) {
	path := writeTemp(t, "track.csv", "foo,bar\n1,2\n")
	assert.Panics(t, func() { input.Init(fileConfig(path), "") })
}

func TestInitMongoCacheHit(t *testing.T) {
	// 缓存命中时完全不访问数据库（URI留空即可验证）
	cacheDir := t.TempDir()
	c := config.Config{}
	c.Input.Track = config.InputPath{DB: "ecodrive", Col: "track"}
	cachePath := filepath.Join(cacheDir, c.Input.Track.GetCachePath())
	assert.Nil(t, os.WriteFile(cachePath, []byte(`[{"lat":30.0,"lng":120.0},{"lat":30.1,"lng":120.1}]`), 0644))

	res := input.Init(c, cacheDir)
	assert.Len(t, res.Waypoints, 2)
}

func TestInitOnlyCacheMiss(t *testing.T) {
	c := config.Config{}
	c.Input.Track = config.InputPath{DB: "ecodrive", Col: "track", OnlyCache: true}
	assert.Panics(t, func() { input.Init(c, t.TempDir()) })
}
