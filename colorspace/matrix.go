package colorspace

// Matrix3x3 表示 3x3 矩阵（行优先存储）
type Matrix3x3 [9]float64

// Vector3 表示 3 维向量
type Vector3 [3]float64

// Identity3x3 单位矩阵
func Identity3x3() Matrix3x3 {
	return Matrix3x3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// 矩阵乘法 (m * other)
func (m Matrix3x3) Multiply(other Matrix3x3) Matrix3x3 {
	var result Matrix3x3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum := 0.0
			for k := 0; k < 3; k++ {
				sum += m[i*3+k] * other[k*3+j]
			}
			result[i*3+j] = sum
		}
	}
	return result
}

// 应用矩阵到向量 (m * v)
func (m Matrix3x3) Apply(v Vector3) Vector3 {
	return Vector3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}
