package mathtypes

import "strconv"

// Vector2 is a two-component float vector.
type Vector2 struct {
	X, Y float32
}

func (v Vector2) MarshalText() ([]byte, error) {
	return formatFloats(v.X, v.Y), nil
}

func (v *Vector2) UnmarshalText(text []byte) error {
	c, err := parseFloats("Vector2", string(text), 2)
	if err != nil {
		return err
	}

	v.X, v.Y = c[0], c[1]

	return nil
}

// Vector3 is a three-component float vector.
type Vector3 struct {
	X, Y, Z float32
}

func (v Vector3) MarshalText() ([]byte, error) {
	return formatFloats(v.X, v.Y, v.Z), nil
}

func (v *Vector3) UnmarshalText(text []byte) error {
	c, err := parseFloats("Vector3", string(text), 3)
	if err != nil {
		return err
	}

	v.X, v.Y, v.Z = c[0], c[1], c[2]

	return nil
}

// Vector4 is a four-component float vector.
type Vector4 struct {
	X, Y, Z, W float32
}

func (v Vector4) MarshalText() ([]byte, error) {
	return formatFloats(v.X, v.Y, v.Z, v.W), nil
}

func (v *Vector4) UnmarshalText(text []byte) error {
	c, err := parseFloats("Vector4", string(text), 4)
	if err != nil {
		return err
	}

	v.X, v.Y, v.Z, v.W = c[0], c[1], c[2], c[3]

	return nil
}

// Quaternion is a rotation in X Y Z W component order.
type Quaternion struct {
	X, Y, Z, W float32
}

func (q Quaternion) MarshalText() ([]byte, error) {
	return formatFloats(q.X, q.Y, q.Z, q.W), nil
}

func (q *Quaternion) UnmarshalText(text []byte) error {
	c, err := parseFloats("Quaternion", string(text), 4)
	if err != nil {
		return err
	}

	q.X, q.Y, q.Z, q.W = c[0], c[1], c[2], c[3]

	return nil
}

// Plane is a normal plus signed distance from the origin.
type Plane struct {
	Normal Vector3
	D      float32
}

func (p Plane) MarshalText() ([]byte, error) {
	return formatFloats(p.Normal.X, p.Normal.Y, p.Normal.Z, p.D), nil
}

func (p *Plane) UnmarshalText(text []byte) error {
	c, err := parseFloats("Plane", string(text), 4)
	if err != nil {
		return err
	}

	p.Normal = Vector3{c[0], c[1], c[2]}
	p.D = c[3]

	return nil
}

// Rectangle is an integer rectangle in X Y Width Height component order.
type Rectangle struct {
	X, Y, Width, Height int
}

func (r Rectangle) MarshalText() ([]byte, error) {
	return formatInts(r.X, r.Y, r.Width, r.Height), nil
}

func (r *Rectangle) UnmarshalText(text []byte) error {
	c, err := parseInts("Rectangle", string(text), 4)
	if err != nil {
		return err
	}

	r.X, r.Y, r.Width, r.Height = c[0], c[1], c[2], c[3]

	return nil
}

// Matrix is a row-major 4x4 float matrix.
type Matrix struct {
	M11, M12, M13, M14 float32
	M21, M22, M23, M24 float32
	M31, M32, M33, M34 float32
	M41, M42, M43, M44 float32
}

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{
		M11: 1, M22: 1, M33: 1, M44: 1,
	}
}

func (m Matrix) MarshalText() ([]byte, error) {
	return formatFloats(
		m.M11, m.M12, m.M13, m.M14,
		m.M21, m.M22, m.M23, m.M24,
		m.M31, m.M32, m.M33, m.M34,
		m.M41, m.M42, m.M43, m.M44,
	), nil
}

func (m *Matrix) UnmarshalText(text []byte) error {
	c, err := parseFloats("Matrix", string(text), 16)
	if err != nil {
		return err
	}

	m.M11, m.M12, m.M13, m.M14 = c[0], c[1], c[2], c[3]
	m.M21, m.M22, m.M23, m.M24 = c[4], c[5], c[6], c[7]
	m.M31, m.M32, m.M33, m.M34 = c[8], c[9], c[10], c[11]
	m.M41, m.M42, m.M43, m.M44 = c[12], c[13], c[14], c[15]

	return nil
}

// Color is an RGBA color with 0-255 components in R G B A order.
type Color struct {
	R, G, B, A uint8
}

func (c Color) MarshalText() ([]byte, error) {
	out := strconv.Itoa(int(c.R)) + " " + strconv.Itoa(int(c.G)) + " " +
		strconv.Itoa(int(c.B)) + " " + strconv.Itoa(int(c.A))

	return []byte(out), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parts, err := parseBytes("Color", string(text), 4)
	if err != nil {
		return err
	}

	c.R, c.G, c.B, c.A = parts[0], parts[1], parts[2], parts[3]

	return nil
}
