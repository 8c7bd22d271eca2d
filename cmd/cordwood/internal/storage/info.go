package storage

import (
	"errors"
	"fmt"

	common "github.com/Determinant/cordwood/cmd/cordwood/internal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// InfoCMD contains `info` command definition.
var InfoCMD = &cobra.Command{
	Use:   "info",
	Short: "Print storage information in YAML",
	Args:  cobra.NoArgs,
	RunE:  infoFunc,
}

type infoView struct {
	Path        string             `yaml:"path"`
	ID          string             `yaml:"id"`
	Fresh       bool               `yaml:"fresh"`
	ArrayRoot   uint64             `yaml:"array_root"`
	ArrayTarget uint64             `yaml:"array_target"`
	ArrayLength uint64             `yaml:"array_length"`
	UsedSpace   uint64             `yaml:"used_space"`
	Objects     uint64             `yaml:"objects"`
	Metrics     map[string]float64 `yaml:"metrics,omitempty"`
}

func infoFunc(cmd *cobra.Command, _ []string) (err error) {
	s, err := common.OpenStorage(cmd)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Close()) }()

	info, err := s.Info()
	if err != nil {
		return err
	}

	m, err := gatherValues(s.Metrics)
	if err != nil {
		return fmt.Errorf("could not gather metrics: %w", err)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)

	err = enc.Encode(infoView{
		Path:        info.Path,
		ID:          info.ID,
		Fresh:       info.Fresh,
		ArrayRoot:   uint64(info.ArrayRoot),
		ArrayTarget: uint64(info.ArrayTarget),
		ArrayLength: info.ArrayLen,
		UsedSpace:   info.UsedSpace,
		Objects:     info.Objects,
		Metrics:     m,
	})
	if err != nil {
		return err
	}

	return enc.Close()
}

// gatherValues returns gauge values and histogram sample counts keyed by
// metric name and labels.
func gatherValues(g prometheus.Gatherer) (map[string]float64, error) {
	mfs, err := g.Gather()
	if err != nil {
		return nil, err
	}

	res := make(map[string]float64)

	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, l := range m.GetLabel() {
				name += fmt.Sprintf("{%s=%q}", l.GetName(), l.GetValue())
			}

			switch {
			case m.GetGauge() != nil:
				res[name] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				res[name+"_count"] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}

	return res, nil
}
