package input

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/entity/track"
)

// preCheckCache 预检查缓存目录
// 功能：验证输入缓存目录的有效性，决定是否启用缓存功能
// 参数：cacheDir-缓存目录路径
// 返回：true表示启用缓存，false表示禁用缓存
// 说明：确保缓存功能的正确配置，避免因无效路径导致的错误
func preCheckCache(cacheDir string) bool {
	if cacheDir == "" {
		log.Info("disable input cache")
		return false
	} else {
		if stat, err := os.Stat(cacheDir); err == nil && stat.IsDir() {
			// 文件夹存在
			log.Infof("enable input cache at %s", cacheDir)
			return true
		} else {
			log.Errorf("disable input cache because invalid dir %s (not exist or file)", cacheDir)
			return false
		}
	}
}

// loadCSV 解析CSV航点文件
// 功能：读取带latitude/longitude表头列的CSV文件
// 算法说明：
// 1. 分隔符嗅探：首行含制表符按制表符分隔（原始数据格式），
//    否则按逗号分隔
// 2. 表头定位：按列名匹配纬度/经度列（兼容lat/lng/lon缩写）
// 3. 逐行解析为航点，数值解析失败的行视为数据错误
func loadCSV(file string) ([]track.Waypoint, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(strings.NewReader(string(data)))
	if i := strings.IndexByte(string(data), '\n'); i >= 0 && strings.ContainsRune(string(data[:i]), '\t') {
		r.Comma = '\t'
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv %s has no data rows", file)
	}
	latCol, lngCol := -1, -1
	for i, name := range records[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "latitude", "lat":
			latCol = i
		case "longitude", "lng", "lon":
			lngCol = i
		}
	}
	if latCol == -1 || lngCol == -1 {
		return nil, fmt.Errorf("csv %s has no latitude/longitude columns in header %v", file, records[0])
	}
	wps := make([]track.Waypoint, 0, len(records)-1)
	for i, row := range records[1:] {
		if len(row) <= latCol || len(row) <= lngCol {
			return nil, fmt.Errorf("csv %s row %d has %d columns", file, i+2, len(row))
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(row[latCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("csv %s row %d: bad latitude %q", file, i+2, row[latCol])
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(row[lngCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("csv %s row %d: bad longitude %q", file, i+2, row[lngCol])
		}
		wps = append(wps, track.Waypoint{Lat: lat, Lng: lng})
	}
	return wps, nil
}

// loadJSON 解析JSON航点文件
// 功能：兼容两种形态：对象数组[{"lat":..,"lng":..},...]与
// 二元组数组[[lat, lng],...]（缓存文件使用对象数组形态）
func loadJSON(file string) ([]track.Waypoint, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var wps []track.Waypoint
	if err := json.Unmarshal(data, &wps); err == nil && len(wps) > 0 {
		return wps, nil
	}
	var pairs [][]float64
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("json %s: %v", file, err)
	}
	wps = make([]track.Waypoint, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("json %s entry %d is not a [lat, lng] pair", file, i)
		}
		wps = append(wps, track.Waypoint{Lat: pair[0], Lng: pair[1]})
	}
	return wps, nil
}

// writeCache 回写航点缓存
// 说明：缓存写入失败仅告警，不影响本次运行
func writeCache(path string, wps []track.Waypoint) {
	data, err := json.Marshal(wps)
	if err != nil {
		log.Errorf("failed to marshal track cache: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Errorf("failed to write track cache %s: %v", path, err)
		return
	}
	log.Infof("write track cache to %s", path)
}

// sanitizeWaypoints 数据清洗
// 功能：丢弃经纬度非法（非有限值或越界）的航点
// 说明：坏行逐条告警后丢弃，与人员数据校验的处理方式一致
func sanitizeWaypoints(wps []track.Waypoint) []track.Waypoint {
	res := make([]track.Waypoint, 0, len(wps))
	for i, wp := range wps {
		if math.IsNaN(wp.Lat) || math.IsInf(wp.Lat, 0) ||
			math.IsNaN(wp.Lng) || math.IsInf(wp.Lng, 0) ||
			math.Abs(wp.Lat) > 90 || math.Abs(wp.Lng) > 180 {
			log.Warnf("ignore waypoint %d due to bad coordinate (%v, %v)", i, wp.Lat, wp.Lng)
			continue
		}
		res = append(res, wp)
	}
	return res
}
