package task

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/ecodrive-sim-oss/optimizer"
)

const (
	SelfName = "ecodrive" // 本程序在模拟任务集群中的名字
)

// Run 运行
// 功能：执行完整的优化与验证流水线
// 算法说明：
// 1. 输出赛道统计信息（总长、段数、弯道数、直道数）
// 2. 优化：演化代数大于0时运行遗传优化器，最优策略写入策略文件；
//    零直道赛道在此中止
// 3. 策略回读：从策略文件加载（缺失时回退缺省策略），保证验证
//    回放消费的就是持久化交接件
// 4. 验证回放：开启遥测与心跳日志，重放最优策略
// 5. 结果汇总日志；指定输出路径时将结果（含遥测）写为JSON文件
func (ctx *Context) Run() {
	trk := ctx.track
	rc := ctx.runtimeConfig

	log.Infof("job %s: track %.1fm, %d segments (%d corners), %d straights",
		ctx.job, trk.TotalLength(), trk.SegmentCount(), trk.CornerCount(), len(trk.Straights()))

	policyPath := rc.All.Policy.File
	if rc.Generations > 0 {
		opt := optimizer.New(trk, rc, ctx.engine, nil)
		result, err := opt.Run()
		if err != nil {
			if errors.Is(err, optimizer.ErrNoStraights) {
				log.Fatalf("optimization aborted: %v", err)
			}
			log.Fatalf("optimization failed: %v", err)
		}
		log.Infof("GA done: best cost %.3f, energy %.3f Wh, avg speed %.2f km/h",
			result.Best.Cost, result.Best.EnergyWh, result.Best.AvgSpeed*3.6)
		if policyPath != "" {
			if err := vehicle.SavePolicyFile(policyPath, result.Policy); err != nil {
				log.Errorf("failed to save best policy to %s: %v", policyPath, err)
			} else {
				log.Infof("best policy saved to %s", policyPath)
			}
		}
	} else {
		log.Info("ga.generations is 0, skip optimization")
	}

	// 验证回放消费的是策略文件本身，缺失时回退缺省策略
	policy := vehicle.LoadPolicyFile(policyPath, len(trk.Straights()))
	outcome := vehicle.Run(trk, rc, rc.C.Step, policy, vehicle.Options{
		Telemetry: true,
		Heartbeat: true,
	})

	log.Infof("verification: %d laps in %.1fs, %.1fm, %.3f Wh, avg %.2f km/h",
		outcome.Laps, outcome.TotalTime, outcome.TotalDistance,
		outcome.EnergyWh, outcome.AvgSpeed*3.6)
	if outcome.Capped {
		log.Warn("verification run was capped by the emergency time limit")
	}

	if ctx.outputPath != "" {
		data, err := json.Marshal(outcome)
		if err != nil {
			log.Errorf("failed to marshal outcome: %v", err)
		} else if err := os.WriteFile(ctx.outputPath, data, 0644); err != nil {
			log.Errorf("failed to write outcome to %s: %v", ctx.outputPath, err)
		} else {
			log.Infof("outcome written to %s", ctx.outputPath)
		}
	}

	log.Infof("engine complete")
}
