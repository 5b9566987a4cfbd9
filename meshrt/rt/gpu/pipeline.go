package gpu

import (
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
)

const (
	TextureBinding uint32 = 0
	SamplerBinding uint32 = 1
)

// PipelineBuilder assembles the textured-mesh render pipeline from WGSL source.
type PipelineBuilder struct {
	Label         string
	Source        string
	VertexEntry   string
	FragmentEntry string
	Log           Logger
}

// Pipeline is the compiled render pipeline together with the layouts it
// was built against. It is immutable once built.
type Pipeline struct {
	Label string

	shader          Handle
	bindGroupLayout Handle
	layout          Handle
	pipeline        Handle
}

// TextureBindGroupLayout is the single bind group the pipeline expects:
// a filterable 2D texture at binding 0 and a filtering sampler at binding 1.
func TextureBindGroupLayout(label string) *wgpu.BindGroupLayoutDescriptor {
	return &wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    TextureBinding,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					Multisampled:  false,
					ViewDimension: wgpu.TextureViewDimension2D,
					SampleType:    wgpu.TextureSampleTypeFloat,
				},
			},
			{
				Binding:    SamplerBinding,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	}
}

// ReplaceBlend writes the fragment color straight through.
func ReplaceBlend() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorZero,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorZero,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}

// CompileWGSL runs the WGSL front-end over source. Features the front-end
// has not implemented yet are reported through ok=false with a nil error,
// leaving validation to the driver.
func CompileWGSL(source string) (ok bool, err error) {
	if strings.TrimSpace(source) == "" {
		return false, fmt.Errorf("%w: empty source", ErrShaderCompile)
	}
	if _, err := naga.Compile(source); err != nil {
		msg := err.Error()
		if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrShaderCompile, err)
	}
	return true, nil
}

// Build compiles the shader and creates the pipeline for a color target of
// the given format. Everything created before a failure is released.
func (b PipelineBuilder) Build(dev Backend, format wgpu.TextureFormat, vertexLayout wgpu.VertexBufferLayout) (*Pipeline, error) {
	log := OrNop(b.Log)
	vsEntry := b.VertexEntry
	if vsEntry == "" {
		vsEntry = "vs_main"
	}
	fsEntry := b.FragmentEntry
	if fsEntry == "" {
		fsEntry = "fs_main"
	}
	for _, entry := range []string{vsEntry, fsEntry} {
		if !strings.Contains(b.Source, "fn "+entry) {
			return nil, fmt.Errorf("%w: %s: missing entry point %q", ErrShaderCompile, b.Label, entry)
		}
	}

	checked, err := CompileWGSL(b.Source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Label, err)
	}
	if !checked {
		log.Warnf("WGSL front-end cannot check %q, deferring to driver", b.Label)
	}

	p := &Pipeline{Label: b.Label}

	p.shader, err = dev.CreateShaderModule(b.Label+" Shader", b.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrShaderCompile, b.Label, err)
	}

	p.bindGroupLayout, err = dev.CreateBindGroupLayout(TextureBindGroupLayout(b.Label + " Texture BGL"))
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("%s: bind group layout: %w", b.Label, err)
	}

	p.layout, err = dev.CreatePipelineLayout(b.Label+" Layout", p.bindGroupLayout)
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("%s: pipeline layout: %w", b.Label, err)
	}

	p.pipeline, err = dev.CreateRenderPipeline(&RenderPipelineDesc{
		Label:         b.Label,
		Layout:        p.layout,
		Shader:        p.shader,
		VertexEntry:   vsEntry,
		FragmentEntry: fsEntry,
		VertexLayout:  vertexLayout,
		Primitive: wgpu.PrimitiveState{
			Topology:         wgpu.PrimitiveTopologyTriangleList,
			StripIndexFormat: wgpu.IndexFormatUndefined,
			FrontFace:        wgpu.FrontFaceCCW,
			CullMode:         wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
		Target: wgpu.ColorTargetState{
			Format:    format,
			Blend:     ReplaceBlend(),
			WriteMask: wgpu.ColorWriteMaskAll,
		},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("%w: %s: link: %v", ErrShaderCompile, b.Label, err)
	}

	log.Debugf("Pipeline %q built for format %v", b.Label, format)
	return p, nil
}

// NewTextureBindGroup binds tex's view and sampler to the pipeline's
// texture bind group layout.
func (p *Pipeline) NewTextureBindGroup(dev Backend, tex *Texture) (Handle, error) {
	if tex == nil || tex.View() == nil || tex.Sampler() == nil {
		return nil, fmt.Errorf("%s: bind group needs a texture view and sampler", p.Label)
	}
	bg, err := dev.CreateBindGroup(&BindGroupDesc{
		Label:  p.Label + " Texture Bind Group",
		Layout: p.bindGroupLayout,
		Entries: []BindGroupEntry{
			{Binding: TextureBinding, TextureView: tex.View()},
			{Binding: SamplerBinding, Sampler: tex.Sampler()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: bind group: %w", p.Label, err)
	}
	return bg, nil
}

func (p *Pipeline) Handle() Handle {
	return p.pipeline
}

// Release frees the pipeline and its layouts and shader module.
func (p *Pipeline) Release() {
	for _, h := range []*Handle{&p.pipeline, &p.layout, &p.bindGroupLayout, &p.shader} {
		if *h != nil {
			(*h).Release()
			*h = nil
		}
	}
}
