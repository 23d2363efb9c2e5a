package gltf

// GL uniform/attribute types used by the default techniques.
const (
	typeFloat     = 5126
	typeFloatVec2 = 35664
	typeFloatVec3 = 35665
	typeFloatVec4 = 35666
	typeFloatMat3 = 35675
	typeFloatMat4 = 35676
	typeSampler2D = 35678
)

const vertexShaderSource = `precision highp float;
uniform mat4 u_modelViewMatrix;
uniform mat4 u_projectionMatrix;
uniform mat3 u_normalMatrix;
attribute vec3 a_position;
attribute vec3 a_normal;
attribute vec2 a_texcoord0;
varying vec3 v_normal;
varying vec2 v_texcoord0;
void main(void) {
    v_normal = u_normalMatrix * a_normal;
    v_texcoord0 = a_texcoord0;
    gl_Position = u_projectionMatrix * u_modelViewMatrix * vec4(a_position, 1.0);
}
`

const colorFragmentSource = `precision highp float;
uniform vec4 u_ambient;
uniform vec4 u_diffuse;
uniform float u_transparency;
varying vec3 v_normal;
varying vec2 v_texcoord0;
void main(void) {
    float lambert = max(dot(normalize(v_normal), vec3(0.0, 0.0, 1.0)), 0.0);
    vec3 color = u_ambient.rgb * 0.2 + u_diffuse.rgb * lambert;
    gl_FragColor = vec4(color, u_diffuse.a * u_transparency);
}
`

const textureFragmentSource = `precision highp float;
uniform vec4 u_ambient;
uniform sampler2D u_diffuse;
uniform float u_transparency;
varying vec3 v_normal;
varying vec2 v_texcoord0;
void main(void) {
    float lambert = max(dot(normalize(v_normal), vec3(0.0, 0.0, 1.0)), 0.0);
    vec4 diffuse = texture2D(u_diffuse, v_texcoord0);
    vec3 color = u_ambient.rgb * diffuse.rgb * 0.2 + diffuse.rgb * lambert;
    gl_FragColor = vec4(color, diffuse.a * u_transparency);
}
`

// DefaultTechniques are the two Lambert techniques materials can point at.
type DefaultTechniques struct {
	Color   ID
	Texture ID
}

// AddDefaultTechniques adds a shared vertex shader, one fragment shader per
// diffuse kind, their programs and techniques.
func AddDefaultTechniques(d *Document) DefaultTechniques {
	vs := d.AddShader(Shader{Name: "lambert.vert", Type: ShaderVertex, Source: vertexShaderSource})
	colorFS := d.AddShader(Shader{Name: "lambert_color.frag", Type: ShaderFragment, Source: colorFragmentSource})
	textureFS := d.AddShader(Shader{Name: "lambert_texture.frag", Type: ShaderFragment, Source: textureFragmentSource})

	attrs := []string{"a_normal", "a_position", "a_texcoord0"}
	colorProg := d.AddProgram(Program{Attributes: attrs, VertexShader: vs, FragmentShader: colorFS})
	textureProg := d.AddProgram(Program{Attributes: attrs, VertexShader: vs, FragmentShader: textureFS})

	return DefaultTechniques{
		Color:   d.AddTechnique(lambertTechnique("lambert_color", colorProg, typeFloatVec4)),
		Texture: d.AddTechnique(lambertTechnique("lambert_texture", textureProg, typeSampler2D)),
	}
}

func lambertTechnique(name string, program ID, diffuseType int) Technique {
	return Technique{
		Name: name,
		Attributes: map[string]string{
			"a_normal":    "normal",
			"a_position":  "position",
			"a_texcoord0": "texcoord0",
		},
		Parameters: map[string]TechniqueParameter{
			"ambient":          {Type: typeFloatVec4},
			"diffuse":          {Type: diffuseType},
			"transparency":     {Type: typeFloat},
			"modelViewMatrix":  {Semantic: "MODELVIEW", Type: typeFloatMat4},
			"projectionMatrix": {Semantic: "PROJECTION", Type: typeFloatMat4},
			"normalMatrix":     {Semantic: "MODELVIEWINVERSETRANSPOSE", Type: typeFloatMat3},
			"normal":           {Semantic: AttrNormal, Type: typeFloatVec3},
			"position":         {Semantic: AttrPosition, Type: typeFloatVec3},
			"texcoord0":        {Semantic: AttrTexCoord0, Type: typeFloatVec2},
		},
		Program: program,
		States:  TechniqueStates{Enable: []int{StateDepthTest, StateCullFace}},
		Uniforms: map[string]string{
			"u_ambient":          "ambient",
			"u_diffuse":          "diffuse",
			"u_transparency":     "transparency",
			"u_modelViewMatrix":  "modelViewMatrix",
			"u_projectionMatrix": "projectionMatrix",
			"u_normalMatrix":     "normalMatrix",
		},
	}
}
