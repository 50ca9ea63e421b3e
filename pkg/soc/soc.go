// Package soc parses the line-oriented SoC descriptor format: a sequence of
// add_new_resource blocks, each followed by its opp/trip_freq/power_profile/
// mesh_information/functionality lines, plus top-level comm_band directives
// for the inter-PE bandwidth matrix.
//
// The format is a fixed bespoke grammar with no off-the-shelf parser
// applicable to it, so this reads it the way a small directive-dispatch
// parser in this codebase's other packages would: line by line, whitespace
// tokenized, '#'-prefixed lines skipped.
package soc

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dashsim/simcore/pkg/model"
)

// Descriptor is the fully parsed SoC: every PE, grouped into clusters, plus
// the inter-PE bandwidth matrix.
type Descriptor struct {
	Resources  []model.Resource
	Clusters   []model.Cluster
	Bandwidth  model.BandwidthMatrix
}

// Parse reads a SoC descriptor from r.
func Parse(r io.Reader) (*Descriptor, error) {
	p := &parser{
		commBandSelf: 1,
	}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r\n ")
		fields := strings.Fields(line)
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := p.dispatch(fields); err != nil {
			return nil, fmt.Errorf("soc: line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("soc: %w", err)
	}
	p.finalizeBandwidth()
	return &Descriptor{
		Resources: p.resources,
		Clusters:  p.clusters,
		Bandwidth: p.bandwidth,
	}, nil
}

type parser struct {
	resources []model.Resource
	clusters  []model.Cluster
	bandwidth model.BandwidthMatrix

	inResource          bool
	capacity            int
	lastPEID            int
	clusterIdx          int // index into p.clusters of the block being filled
	eachPEFunctionality int
	commBandSelf        int

	pendingBand [][3]int // [srcClusterID, dstClusterID, value], applied once all clusters are known
}

func (p *parser) dispatch(f []string) error {
	if !p.inResource {
		switch f[0] {
		case "add_new_resource":
			return p.addNewResource(f)
		case "comm_band_self":
			if len(f) < 2 {
				return ErrShortLine
			}
			v, err := strconv.Atoi(f[1])
			if err != nil {
				return fmt.Errorf("comm_band_self: %w", err)
			}
			p.commBandSelf = v
			return nil
		case "comm_band":
			return p.commBand(f)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownDirective, f[0])
		}
	}
	return p.resourceBlockLine(f)
}

// addNewResource mirrors DASH_SoC_parser.py's field layout: the directive
// carries labeled pairs, of which only the value half matters here.
//
//	add_new_resource type <type> name <name> cluster_ID <id> capacity <n> num_functionalities <n> DVFS <mode>
func (p *parser) addNewResource(f []string) error {
	if len(f) < 13 {
		return ErrShortLine
	}
	typ := model.ResourceType(f[2])
	namePrefix := f[4]
	clusterID, err := strconv.Atoi(f[6])
	if err != nil {
		return fmt.Errorf("add_new_resource cluster_ID: %w", err)
	}
	capacity, err := strconv.Atoi(f[8])
	if err != nil {
		return fmt.Errorf("add_new_resource capacity: %w", err)
	}
	if capacity < 1 {
		capacity = 1
	}
	numFunc, err := strconv.Atoi(f[10])
	if err != nil {
		return fmt.Errorf("add_new_resource num_functionalities: %w", err)
	}
	dvfs, err := parseDVFS(f[12])
	if err != nil {
		return err
	}

	cluster := model.Cluster{
		ID:   clusterID,
		Type: typ,
		DVFS: dvfs,
	}
	for i := 0; i < capacity; i++ {
		id := model.PEID(p.lastPEID + i)
		p.resources = append(p.resources, model.Resource{
			ID:        id,
			Name:      fmt.Sprintf("%s_%d", namePrefix, int(id)),
			Type:      typ,
			ClusterID: clusterID,
			Capacity:  1,
		})
		cluster.PEIDs = append(cluster.PEIDs, id)
	}
	cluster.TotalCores = len(cluster.PEIDs)
	cluster.NumActiveCores = len(cluster.PEIDs)
	p.clusters = append(p.clusters, cluster)
	p.clusterIdx = len(p.clusters) - 1

	p.capacity = capacity
	p.lastPEID += capacity
	p.eachPEFunctionality = numFunc
	p.inResource = true
	return nil
}

func parseDVFS(tok string) (model.DVFSMode, error) {
	switch {
	case tok == "performance":
		return model.DVFSMode{Kind: model.DVFSPerformance}, nil
	case tok == "powersave":
		return model.DVFSMode{Kind: model.DVFSPowersave}, nil
	case tok == "ondemand":
		return model.DVFSMode{Kind: model.DVFSOndemand}, nil
	case tok == "none":
		return model.DVFSMode{Kind: model.DVFSNone}, nil
	case strings.HasPrefix(tok, "constant_"):
		mhz, err := strconv.Atoi(strings.TrimPrefix(tok, "constant_"))
		if err != nil {
			return model.DVFSMode{}, fmt.Errorf("%w: %q", ErrBadDVFSMode, tok)
		}
		return model.DVFSMode{Kind: model.DVFSConstant, ConstantMHz: mhz}, nil
	default:
		return model.DVFSMode{}, fmt.Errorf("%w: %q", ErrBadDVFSMode, tok)
	}
}

// commBand records a bandwidth directive between two cluster IDs; applied
// after the whole file is read since later clusters may not exist yet.
func (p *parser) commBand(f []string) error {
	if len(f) < 4 {
		return ErrShortLine
	}
	src, err1 := strconv.Atoi(f[1])
	dst, err2 := strconv.Atoi(f[2])
	val, err3 := strconv.Atoi(f[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return fmt.Errorf("comm_band: malformed fields")
	}
	p.pendingBand = append(p.pendingBand, [3]int{src, dst, val})
	return nil
}

func (p *parser) resourceBlockLine(f []string) error {
	if p.clusterIdx >= len(p.clusters) {
		return ErrNoCluster
	}
	cl := &p.clusters[p.clusterIdx]
	switch f[0] {
	case "opp":
		if len(f) < 3 {
			return ErrShortLine
		}
		freq, err1 := strconv.Atoi(f[1])
		volt, err2 := strconv.Atoi(f[2])
		if err1 != nil || err2 != nil {
			return fmt.Errorf("opp: malformed fields")
		}
		cl.OPP = append(cl.OPP, model.OPP{FreqMHz: freq, VoltMV: volt})
		return nil
	case "trip_freq":
		freqs, err := atoiTail(f)
		if err != nil {
			return fmt.Errorf("trip_freq: %w", err)
		}
		cl.TripFreqMHz = freqs
		return nil
	case "DTPM_trip_freq":
		freqs, err := atoiTail(f)
		if err != nil {
			return fmt.Errorf("DTPM_trip_freq: %w", err)
		}
		cl.DTPMTripFreqMHz = freqs
		return nil
	case "power_profile":
		return addProfile(&cl.PowerProfile, f)
	case "PG_profile":
		return addProfile(&cl.PGProfile, f)
	case "mesh_information":
		return p.meshInformation(f)
	default:
		return p.functionalityLine(f)
	}
}

func atoiTail(f []string) ([]int, error) {
	out := make([]int, 0, len(f)-1)
	for _, s := range f[1:] {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func addProfile(profile *model.PowerProfile, f []string) error {
	if len(f) < 3 {
		return ErrShortLine
	}
	threshold, err := strconv.Atoi(f[1])
	if err != nil {
		return fmt.Errorf("profile threshold: %w", err)
	}
	vals := make([]float64, 0, len(f)-2)
	for _, s := range f[2:] {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("profile value: %w", err)
		}
		vals = append(vals, v)
	}
	if *profile == nil {
		*profile = model.PowerProfile{}
	}
	(*profile)[threshold] = vals
	return nil
}

func (p *parser) meshInformation(f []string) error {
	if len(f) < 6 {
		return ErrShortLine
	}
	pos, err1 := strconv.Atoi(f[2])
	height, err2 := strconv.Atoi(f[3])
	width, err3 := strconv.Atoi(f[4])
	if err1 != nil || err2 != nil || err3 != nil {
		return fmt.Errorf("mesh_information: malformed fields")
	}
	for i := 0; i < p.capacity; i++ {
		idx := len(p.resources) - 1 - i
		p.resources[idx].MeshName = f[1]
		p.resources[idx].Position = pos
		p.resources[idx].Height = height
		p.resources[idx].Width = width
		p.resources[idx].Color = f[5]
	}
	return nil
}

func (p *parser) functionalityLine(f []string) error {
	if len(f) < 2 {
		return ErrShortLine
	}
	runtime, err := strconv.ParseFloat(f[1], 64)
	if err != nil {
		return fmt.Errorf("functionality runtime: %w", err)
	}
	for i := 0; i < p.capacity; i++ {
		idx := len(p.resources) - 1 - i
		r := &p.resources[idx]
		if p.eachPEFunctionality > len(r.SupportedFunctionalities) {
			r.SupportedFunctionalities = append(r.SupportedFunctionalities, f[0])
			r.Performance = append(r.Performance, runtime)
			if len(r.SupportedFunctionalities) == p.eachPEFunctionality && i == p.capacity-1 {
				p.inResource = false
				p.eachPEFunctionality = 0
				sortOPP(&p.clusters[p.clusterIdx])
			}
		}
	}
	return nil
}

func sortOPP(c *model.Cluster) {
	for i := 1; i < len(c.OPP); i++ {
		for j := i; j > 0 && c.OPP[j-1].FreqMHz > c.OPP[j].FreqMHz; j-- {
			c.OPP[j-1], c.OPP[j] = c.OPP[j], c.OPP[j-1]
		}
	}
}

// finalizeBandwidth expands pending comm_band directives into the full
// per-PE matrix, mirroring the original's cluster-to-core-range expansion
// and diagonal self-bandwidth fill.
func (p *parser) finalizeBandwidth() {
	n := len(p.resources)
	if n == 0 {
		return
	}
	m := make(model.BandwidthMatrix, n)
	for i := range m {
		m[i] = make([]model.BitsPerUs, n)
		for j := range m[i] {
			if i == j {
				m[i][j] = model.BitsPerUs(p.commBandSelf)
			} else {
				m[i][j] = 1
			}
		}
	}
	for _, band := range p.pendingBand {
		srcID, dstID, val := band[0], band[1], band[2]
		for _, srcPE := range clusterPEs(p.clusters, srcID) {
			for _, dstPE := range clusterPEs(p.clusters, dstID) {
				if srcPE == dstPE {
					continue
				}
				m[srcPE][dstPE] = model.BitsPerUs(val)
				m[dstPE][srcPE] = model.BitsPerUs(val)
			}
		}
	}
	p.bandwidth = m
}

func clusterPEs(clusters []model.Cluster, clusterID int) []model.PEID {
	for _, c := range clusters {
		if c.ID == clusterID {
			return c.PEIDs
		}
	}
	return nil
}
