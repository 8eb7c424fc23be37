package task

import (
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/entity/track"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils/input"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/utils/randengine"
)

// Context 仿真任务上下文
// 功能：包含一次优化与验证任务的所有变量和状态，替代原来的全局变量
// 说明：持有运行时配置、随机数引擎、输入数据与赛道模型；
// 赛道构建一次，此后只读共享
type Context struct {
	// 任务名
	job string
	// 缓存文件夹
	cacheDir string
	// 结果输出文件路径，为空则不输出文件
	outputPath string

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
	// 随机数引擎
	engine *randengine.Engine
	// 用于初始化的输入
	initRes *input.Input
	// 赛道
	track *track.Track
}

// NewContext 创建新的仿真任务上下文
// 功能：校验配置、加载输入数据并构建赛道模型
// 参数：job-任务名称，cacheDir-缓存目录，outputPath-结果输出路径，
// c-配置对象
// 返回：初始化完成的Context实例
// 说明：配置校验与赛道构建的错误在此处即为致命错误，
// 保证任何模拟步执行前失败
func NewContext(job string, cacheDir string, outputPath string, c config.Config) *Context {
	ctx := &Context{
		job:        job,
		cacheDir:   cacheDir,
		outputPath: outputPath,
	}

	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		log.Fatalf("%v", err)
	}
	ctx.runtimeConfig = rc
	ctx.engine = randengine.New(rc.C.Seed)

	// 下载所有模拟器启动所需的数据
	ctx.initRes = input.Init(c, ctx.cacheDir)

	trk, err := track.New(ctx.initRes.Waypoints, rc.CornerWindow, rc.CornerThresholdDeg)
	if err != nil {
		log.Fatalf("failed to build track: %v", err)
	}
	ctx.track = trk

	return ctx
}

func (ctx *Context) GetInput() *input.Input {
	return ctx.initRes
}

func (ctx *Context) Track() *track.Track {
	return ctx.track
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}
