package input

import (
	"context"
	"path/filepath"
	"strings"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/entity/track"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Input 输入数据
// 功能：存储仿真所需的全部输入数据
// 说明：赛道航点可来自本地CSV/JSON文件或MongoDB集合，支持缓存机制
type Input struct {
	Waypoints []track.Waypoint // 赛道航点（有序闭合环）
}

// Init 加载数据
// 功能：根据配置加载赛道航点
// 参数：config-配置对象，cacheDir-缓存目录（空串禁用缓存）
// 返回：加载完成的输入数据指针
// 算法说明：
// 1. 缓存检查：验证缓存目录的有效性
// 2. 文件加载：file字段非空时从本地文件加载（优先级高于MongoDB），
//    按扩展名区分CSV与JSON
// 3. 数据库加载：从MongoDB集合按index排序拉取航点文档，拉取结果
//    写入本地缓存；后续运行优先读缓存；only_cache跳过网络访问
// 4. 数据清洗：丢弃经纬度非法的航点并告警
// 说明：加载失败是致命错误，与其他输入错误一样直接panic
func Init(config config.Config, cacheDir string) (res *Input) {
	useCache := preCheckCache(cacheDir)
	if !useCache {
		cacheDir = ""
	}

	res = &Input{}
	path := config.Input.Track
	if path.File != "" {
		res.Waypoints = mustLoadFile(path.File)
	} else {
		res.Waypoints = mustLoadMongo(config.Input.URI, path, cacheDir)
	}
	res.Waypoints = sanitizeWaypoints(res.Waypoints)
	if len(res.Waypoints) < 2 {
		log.Panicf("track input has %d usable waypoints, at least 2 required", len(res.Waypoints))
	}
	log.Infof("Waypoint: %v", len(res.Waypoints))
	return
}

// mustLoadFile 从本地文件加载航点
// 功能：按扩展名选择解析器，.csv走CSV解析，其余按JSON解析
func mustLoadFile(file string) []track.Waypoint {
	var wps []track.Waypoint
	var err error
	if strings.EqualFold(filepath.Ext(file), ".csv") {
		wps, err = loadCSV(file)
	} else {
		wps, err = loadJSON(file)
	}
	if err != nil {
		log.Panicf("failed to load track from file %s: %v", file, err)
	}
	return wps
}

// waypointDoc MongoDB中的航点文档
type waypointDoc struct {
	Index int32   `bson:"index"` // 排序下标
	Lat   float64 `bson:"lat"`   // 纬度（度）
	Lng   float64 `bson:"lng"`   // 经度（度）
}

// mustLoadMongo 从MongoDB加载航点
// 功能：优先读本地缓存，未命中时连接数据库拉取并回写缓存
// 算法说明：
// 1. 缓存命中直接返回
// 2. only_cache时缓存未命中为致命错误，不做网络访问
// 3. 按index升序拉取集合全部文档并解码
// 4. 启用缓存时将结果以JSON回写
func mustLoadMongo(uri string, path config.InputPath, cacheDir string) []track.Waypoint {
	cachePath := ""
	if cacheDir != "" {
		cachePath = filepath.Join(cacheDir, path.GetCachePath())
	}
	if cachePath != "" {
		if wps, err := loadJSON(cachePath); err == nil {
			log.Infof("load track from cache %s", cachePath)
			return wps
		}
	}
	if path.OnlyCache {
		log.Panicf("track cache for %s.%s is missing while only_cache is set", path.DB, path.Col)
	}
	if uri == "" {
		log.Panicf("input.uri must be set to fetch track %s.%s from MongoDB", path.DB, path.Col)
	}

	client := mongoutil.NewClient(uri)
	defer client.Disconnect(context.Background())
	coll := client.Database(path.DB).Collection(path.Col)
	log.Infof("start fetching from %s.%s", path.DB, path.Col)
	cur, err := coll.Find(
		context.Background(), bson.D{},
		options.Find().SetSort(bson.D{{Key: "index", Value: 1}}),
	)
	if err != nil {
		log.Panicf("failed to fetch track from %s.%s: %v", path.DB, path.Col, err)
	}
	var docs []waypointDoc
	if err := cur.All(context.Background(), &docs); err != nil {
		log.Panicf("failed to decode track from %s.%s: %v", path.DB, path.Col, err)
	}
	log.Infof("finish fetching from %s.%s", path.DB, path.Col)
	wps := lo.Map(docs, func(d waypointDoc, _ int) track.Waypoint {
		return track.Waypoint{Lat: d.Lat, Lng: d.Lng}
	})
	if cachePath != "" {
		writeCache(cachePath, wps)
	}
	return wps
}
